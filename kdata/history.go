package kdata

import (
	"cmp"
	"context"
	"slices"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/config"
	"github.com/khquant/khdata/core"
	"go.uber.org/zap"
)

type HistoryArgs struct {
	Symbols    []string
	Fields     []string
	BarCount   int
	Period     string // 原生周期: 1m/5m/1d
	RefTime    string // 参考时间，为空取当前时间
	SkipPaused bool   // 跳过停牌（成交量为0）的bar
	Adjust     string // 复权: none/front/back
	ForceFresh bool   // 读取前先刷新本地数据
}

/*
History
获取参考时间之前的历史K线，严格不含参考时间点本身：
分钟周期按精确时间戳过滤，日线按日期过滤（参考日当天也被排除），
保证回测中不引入未来数据。每个标的最多返回BarCount根，升序。
单个标的刷新或读取失败只影响该标的（返回空序列），不中断批量。
*/
func History(ctx context.Context, src MarketSource, args *HistoryArgs) (*ResultSet, *errs.Error) {
	if len(args.Symbols) == 0 {
		return nil, errs.NewMsg(core.ErrInvalidParam, "symbols is required")
	}
	if len(args.Fields) == 0 {
		return nil, errs.NewMsg(core.ErrInvalidParam, "fields is required")
	}
	if args.BarCount <= 0 {
		return nil, errs.NewMsg(core.ErrInvalidBars, "barCount must be positive: %d", args.BarCount)
	}
	refMS := btime.TimeMS()
	if args.RefTime != "" {
		var err *errs.Error
		refMS, err = btime.ParseTimeMS(args.RefTime)
		if err != nil {
			return nil, err
		}
	}
	daysBack := lookbackDays(args.Period, args.BarCount)
	startMS := btime.DateMS(refMS) - int64(daysBack)*btime.MSecsDay
	// 取到参考日次日零点，参考时间点的排除在下方过滤完成
	endMS := btime.DateMS(refMS) + btime.MSecsDay
	if args.ForceFresh {
		downloadEach(ctx, src, args.Symbols, args.Period, startMS, refMS)
	}
	res := newResultSet(args.Symbols, args.Fields)
	data, err := src.Read(ctx, args.Symbols, args.Fields, args.Period, startMS, endMS, args.Adjust)
	if err != nil {
		log.Error("read market data fail", zap.String("period", args.Period), zap.Error(err))
		return res, nil
	}
	isDaily := args.Period == core.PeriodDay1
	refDate := btime.DateMS(refMS)
	for _, symbol := range args.Symbols {
		bars := data[symbol]
		if len(bars) == 0 {
			log.Debug("no data for symbol", zap.String("symbol", symbol))
			continue
		}
		keep := make([]*Bar, 0, len(bars))
		for _, bar := range bars {
			if isDaily {
				if btime.DateMS(bar.Time) >= refDate {
					continue
				}
			} else if bar.Time >= refMS {
				continue
			}
			if args.SkipPaused && bar.Volume == 0 {
				continue
			}
			keep = append(keep, bar)
		}
		slices.SortFunc(keep, func(a, b *Bar) int {
			return cmp.Compare(a.Time, b.Time)
		})
		if len(keep) > args.BarCount {
			keep = keep[len(keep)-args.BarCount:]
		}
		res.Data[symbol] = keep
	}
	return res, nil
}

// downloadEach 逐个标的刷新本地数据，失败只记录日志不中断
func downloadEach(ctx context.Context, src MarketSource, symbols []string, period string, startMS, endMS int64) {
	for _, symbol := range symbols {
		err := src.Download(ctx, symbol, period, startMS, endMS)
		if err != nil {
			log.Warn("download fail", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

/*
lookbackDays
按周期和数量估算需要回看的自然日天数。刻意取宽松倍数以吸收
停牌、周末和节假日造成的空洞，是可调经验值而非精确推导。
*/
func lookbackDays(period string, barCount int) int {
	switch period {
	case core.PeriodMin1, core.PeriodMin5:
		days := (barCount*10 + 1439) / 1440
		return max(orDef(config.Data.MinLookbackDays, 10), days)
	case core.PeriodDay1:
		return barCount * orDef(config.Data.DayLookbackMult, 5)
	}
	return barCount * orDef(config.Data.DefLookbackMult, 3)
}

func orDef(val, defVal int) int {
	if val == 0 {
		return defVal
	}
	return val
}
