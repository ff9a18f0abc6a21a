package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/calendar"
	"github.com/khquant/khdata/config"
	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/feed"
	"github.com/khquant/khdata/kdata"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

func openLocal() (*feed.LocalSource, *errs.Error) {
	dbFile := config.Data.DbFile
	if dbFile == "" {
		return nil, errs.NewMsg(core.ErrBadConfig, "db_file is required, set data_dir or db_file in config")
	}
	var up feed.Upstream
	if config.Data.CsvDir != "" {
		up = &feed.CsvUpstream{Dir: config.Data.CsvDir}
	}
	return feed.NewLocalSource(dbFile, up)
}

/*
RunDownload
将上游指定时间段的原生周期数据逐标的回补到本地缓存。
单个标的失败只记录日志，继续后面的标的。
*/
func RunDownload(args *config.CmdArgs) *errs.Error {
	if len(args.Symbols) == 0 {
		return errs.NewMsg(core.ErrInvalidParam, "-symbols is required")
	}
	if args.StartTime == "" || args.EndTime == "" {
		return errs.NewMsg(core.ErrInvalidParam, "-start and -end is required")
	}
	startMS, err := btime.ParseTimeMS(args.StartTime)
	if err != nil {
		return err
	}
	endMS, err := btime.ParseTimeMS(args.EndTime)
	if err != nil {
		return err
	}
	src, err := openLocal()
	if err != nil {
		return err
	}
	defer src.Close()
	ctx := context.Background()
	pBar := progressbar.Default(int64(len(args.Symbols)), "download")
	doneNum := 0
	for _, symbol := range args.Symbols {
		err = src.Download(ctx, symbol, args.Period, startMS, endMS+btime.MSecsDay)
		if err != nil {
			log.Warn("download fail", zap.String("symbol", symbol), zap.Error(err))
		} else {
			doneNum += 1
		}
		pBar.Add(1)
	}
	log.Info("download done", zap.Int("ok", doneNum), zap.Int("total", len(args.Symbols)))
	return nil
}

func RunHistory(args *config.CmdArgs) *errs.Error {
	src, err := openLocal()
	if err != nil {
		return err
	}
	defer src.Close()
	res, err := kdata.History(context.Background(), src, &kdata.HistoryArgs{
		Symbols:    args.Symbols,
		Fields:     args.Fields,
		BarCount:   args.BarCount,
		Period:     args.Period,
		RefTime:    args.RefTime,
		SkipPaused: args.SkipPaused,
		Adjust:     args.AdjType,
		ForceFresh: args.Force,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func RunKline(args *config.CmdArgs) *errs.Error {
	src, err := openLocal()
	if err != nil {
		return err
	}
	defer src.Close()
	res, err := kdata.Kline(context.Background(), src, calendar.Default(), &kdata.KlineArgs{
		Symbols:    args.Symbols,
		Period:     args.Period,
		BarCount:   args.BarCount,
		Fields:     args.Fields,
		EndTime:    args.RefTime,
		Adjust:     args.AdjType,
		ForceFresh: args.Force,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res *kdata.ResultSet) {
	for _, symbol := range res.Symbols {
		bars := res.Data[symbol]
		log.Info("symbol bars", zap.String("symbol", symbol), zap.Int("num", len(bars)))
		if len(bars) == 0 {
			continue
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader(res.Fields)
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, bar := range bars {
			row := make([]string, 0, len(res.Fields))
			row = append(row, btime.ToDateStr(bar.Time, ""))
			for _, field := range res.Fields[1:] {
				row = append(row, strconv.FormatFloat(bar.Get(field), 'f', -1, 64))
			}
			table.Append(row)
		}
		table.Render()
	}
}
