package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/cmd"
	"github.com/khquant/khdata/config"
	"github.com/khquant/khdata/core"
)

var subHelp = map[string]string{
	"download": "download kline data into local cache",
	"history":  "query history bars before a reference time",
	"kline":    "query custom period bars with live snapshot",
}

const VERSION = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printAndExit()
	}
	cmdName := os.Args[1]
	var args config.CmdArgs

	var sub = flag.NewFlagSet(cmdName, flag.ExitOnError)
	switch cmdName {
	case "download":
		bindSubFlags(&args, sub, []string{"symbols", "period", "start", "end"})
	case "history":
		bindSubFlags(&args, sub, []string{"symbols", "fields", "period", "count", "time",
			"adj", "skip_paused", "force"})
	case "kline":
		bindSubFlags(&args, sub, []string{"symbols", "fields", "period", "count", "time",
			"adj", "force"})
	default:
		printAndExit()
	}

	err_ := sub.Parse(os.Args[2:])
	if err_ != nil {
		fmt.Printf("Error: %v", err_)
		printAndExit()
	}
	args.Init()
	args.SetLog(false)
	err := config.LoadConfig(&args)
	if err == nil {
		err = core.Setup()
	}
	if err == nil {
		switch cmdName {
		case "download":
			err = cmd.RunDownload(&args)
		case "history":
			err = cmd.RunHistory(&args)
		case "kline":
			err = cmd.RunKline(&args)
		}
	}
	if err != nil {
		log.Error("run " + cmdName + " fail: " + err.Error())
		os.Exit(1)
	}
}

func bindSubFlags(args *config.CmdArgs, sub *flag.FlagSet, opts []string) {
	sub.Var(&args.Configs, "config", "config path to use, Multiple -config options may be used")
	sub.StringVar(&args.DataDir, "datadir", "", "Path to data dir.")
	sub.StringVar(&args.Logfile, "logfile", "", "Log to the file specified")
	sub.StringVar(&args.LogLevel, "level", "info", "set logging level")
	sub.BoolVar(&args.Debug, "debug", false, "set logging level to debug")
	sub.BoolVar(&args.NoDefault, "nodefault", false, "ignore default config files")
	for _, key := range opts {
		switch key {
		case "symbols":
			sub.StringVar(&args.RawSymbols, "symbols", "", "symbols, comma separated")
		case "fields":
			sub.StringVar(&args.RawFields, "fields", "open,high,low,close,volume", "bar fields, comma separated")
		case "period":
			sub.StringVar(&args.Period, "period", "1d", "bar period, 1m/5m/1d for history, 15m/2h/3d etc for kline")
		case "count":
			sub.IntVar(&args.BarCount, "count", 10, "bar count")
		case "time":
			sub.StringVar(&args.RefTime, "time", "", "reference time, like 20250324 or 2025-03-24 14:30")
		case "start":
			sub.StringVar(&args.StartTime, "start", "", "start time for download")
		case "end":
			sub.StringVar(&args.EndTime, "end", "", "end time for download")
		case "adj":
			sub.StringVar(&args.AdjType, "adj", "front", "price adjust: none/front/back")
		case "skip_paused":
			sub.BoolVar(&args.SkipPaused, "skip_paused", false, "skip zero volume bars")
		case "force":
			sub.BoolVar(&args.Force, "force", false, "refresh local data before query")
		}
	}
}

func printAndExit() {
	tpl := "khdata %v\nplease run with a sub command:\n"
	fmt.Printf(tpl, VERSION)
	for name, text := range subHelp {
		fmt.Printf("  %s:  %s\n", name, text)
	}
	os.Exit(1)
}
