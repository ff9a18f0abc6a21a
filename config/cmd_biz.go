package config

import (
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/utils"
)

func (a *CmdArgs) Init() {
	a.Symbols = utils.SplitSolid(a.RawSymbols, ",")
	a.Fields = utils.SplitSolid(a.RawFields, ",")
	if len(a.Fields) == 0 {
		a.Fields = []string{"open", "high", "low", "close", "volume"}
	}
}

func (a *CmdArgs) SetLog(showLog bool) {
	logLevel := "info"
	if a.Debug {
		logLevel = "debug"
	}
	if a.LogLevel != "" {
		logLevel = a.LogLevel
	}
	log.Setup(logLevel, a.Logfile)
	if showLog {
		log.Info("Log Level: " + logLevel)
	}
}
