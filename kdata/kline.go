package kdata

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/calendar"
	"github.com/khquant/khdata/config"
	"github.com/khquant/khdata/core"
	"go.uber.org/zap"
)

type KlineArgs struct {
	Symbols    []string
	Period     string // <正整数><m|h|d>，如1m/15m/2h/3d
	BarCount   int    // 最大core.MaxBarCount
	Fields     []string
	EndTime    string // 结束时间，分钟精度，为空取当前时间
	Adjust     string
	ForceFresh bool
}

/*
Kline
获取任意自定义周期的K线，支持年对齐和未收线实时快照。
与History相反，结束时间所在的未收线分组不会被排除：
该分组用已见到的子bar聚合成一根快照bar作为末根返回。
非原生分钟/小时周期从1m合成，合成前先做9:30修正；
多日周期按年初首个交易日对齐分组，保证多标的分组边界一致。
*/
func Kline(ctx context.Context, src MarketSource, cal *calendar.Calendar, args *KlineArgs) (*ResultSet, *errs.Error) {
	if len(args.Symbols) == 0 {
		return nil, errs.NewMsg(core.ErrInvalidParam, "symbols is required")
	}
	spec, err := ParsePeriod(args.Period)
	if err != nil {
		return nil, err
	}
	if args.BarCount <= 0 || args.BarCount > core.MaxBarCount {
		return nil, errs.NewMsg(core.ErrInvalidBars, "barCount must be in (0, %d]: %d",
			core.MaxBarCount, args.BarCount)
	}
	fields := args.Fields
	if len(fields) == 0 {
		fields = []string{"open", "high", "low", "close", "volume"}
	}
	refMS := btime.TruncMinuteMS(btime.TimeMS())
	if args.EndTime != "" {
		refMS, err = btime.ParseKlineTimeMS(args.EndTime)
		if err != nil {
			return nil, err
		}
	}
	switch spec.Unit {
	case 'm':
		if spec.Native() {
			return klineNative(ctx, src, args, spec, fields, refMS)
		}
		return klineSynthMinute(ctx, src, args, spec.Num, fields, refMS)
	case 'h':
		return klineSynthMinute(ctx, src, args, spec.Num*60, fields, refMS)
	default:
		if spec.Num == 1 {
			return klineDayNative(ctx, src, args, fields, refMS)
		}
		return klineDayMulti(ctx, src, cal, args, spec.Num, fields, refMS)
	}
}

/*
pullBars 计算范围内的原生周期数据批量读取，按需先逐标的刷新。
整体读取失败记录日志并返回nil，由调用方退化为空结果。
*/
func pullBars(ctx context.Context, src MarketSource, args *KlineArgs, period string,
	startMS, refMS int64, fields []string) map[string][]*Bar {
	endMS := btime.DateMS(refMS) + btime.MSecsDay
	if args.ForceFresh {
		downloadEach(ctx, src, args.Symbols, period, startMS, refMS)
	}
	data, err := src.Read(ctx, args.Symbols, fields, period, startMS, endMS, args.Adjust)
	if err != nil {
		log.Error("read market data fail", zap.String("period", period), zap.Error(err))
		return nil
	}
	return data
}

// klineNative 原生分钟周期（1m/5m）：直接取数，保留未收线bar
func klineNative(ctx context.Context, src MarketSource, args *KlineArgs, spec *PeriodSpec,
	fields []string, refMS int64) (*ResultSet, *errs.Error) {
	daysBack := max(orDef(config.Data.MinLookbackDays, 10), (args.BarCount*spec.Num+1439)/1440)
	startMS := btime.DateMS(refMS) - int64(daysBack)*btime.MSecsDay
	res := newResultSet(args.Symbols, fields)
	data := pullBars(ctx, src, args, spec.String(), startMS, refMS, fields)
	for _, symbol := range args.Symbols {
		bars := sortedBefore(data[symbol], refMS)
		if len(bars) > args.BarCount {
			bars = bars[len(bars)-args.BarCount:]
		}
		res.Data[symbol] = bars
	}
	return res, nil
}

// klineDayNative 1日线：按日期过滤，参考日当天包含在内（未收线快照）
func klineDayNative(ctx context.Context, src MarketSource, args *KlineArgs,
	fields []string, refMS int64) (*ResultSet, *errs.Error) {
	daysBack := args.BarCount * orDef(config.Data.DayLookbackMult, 5)
	startMS := btime.DateMS(refMS) - int64(daysBack)*btime.MSecsDay
	res := newResultSet(args.Symbols, fields)
	data := pullBars(ctx, src, args, core.PeriodDay1, startMS, refMS, fields)
	// 日线按日期过滤，参考日内任意时刻戳记的bar均保留
	dayEndMS := btime.DateMS(refMS) + btime.MSecsDay - 1
	for _, symbol := range args.Symbols {
		bars := sortedBefore(data[symbol], dayEndMS)
		if len(bars) > args.BarCount {
			bars = bars[len(bars)-args.BarCount:]
		}
		res.Data[symbol] = bars
	}
	return res, nil
}

/*
klineSynthMinute
从1m合成periodMins分钟的bar。分组以修正后每日首根分钟bar（9:31）
为第0分钟，下午时段统一减去午休90分钟，保证分组不会跨午休断开。
*/
func klineSynthMinute(ctx context.Context, src MarketSource, args *KlineArgs, periodMins int,
	fields []string, refMS int64) (*ResultSet, *errs.Error) {
	daysBack := max(orDef(config.Data.MinLookbackDays, 10), (args.BarCount*periodMins+1439)/1440)
	startMS := btime.DateMS(refMS) - int64(daysBack)*btime.MSecsDay
	res := newResultSet(args.Symbols, fields)
	data := pullBars(ctx, src, args, core.PeriodMin1, startMS, refMS, fields)
	for _, symbol := range args.Symbols {
		bars := sortedBefore(data[symbol], refMS)
		if len(bars) == 0 {
			continue
		}
		bars = MergeAuctionBar(bars, fields)
		groups := groupBars(bars, func(bar *Bar) groupKey {
			t := btime.MSToTime(bar.Time)
			mins := (t.Hour()-core.SessionOpenHour)*60 + t.Minute() - core.FirstBarMin
			if t.Hour() >= core.NoonOpenHour {
				mins -= core.LunchBreakMins
			}
			return groupKey{day: btime.DateMS(bar.Time), idx: floorDiv(mins, periodMins)}
		})
		res.Data[symbol] = aggTail(groups, fields, args.BarCount)
	}
	return res, nil
}

/*
klineDayMulti
多日周期的年对齐合成：分组序号取交易日在年度交易日列表中的
下标除以周期天数，与各标的自身数据疏密无关，因此不同标的的
分组边界天然一致，聚合后的bar时间戳可跨标的直接对比。
*/
func klineDayMulti(ctx context.Context, src MarketSource, cal *calendar.Calendar, args *KlineArgs,
	periodDays int, fields []string, refMS int64) (*ResultSet, *errs.Error) {
	year := btime.YearOf(refMS)
	anchorMS := cal.YearFirstTradingDay(year)
	if refMS < anchorMS {
		year -= 1
		anchorMS = cal.YearFirstTradingDay(year)
	}
	lookbackMS := int64(args.BarCount*periodDays*orDef(config.Data.DayLookbackMult, 5)) * btime.MSecsDay
	startMS := max(anchorMS, btime.DateMS(refMS)-lookbackMS)
	res := newResultSet(args.Symbols, fields)
	data := pullBars(ctx, src, args, core.PeriodDay1, startMS, refMS, fields)
	yearEndMS := time.Date(year, 12, 31, 0, 0, 0, 0, btime.LocCN).UnixMilli()
	tradeDays := cal.TradingDaysBetween(anchorMS, min(refMS, yearEndMS))
	if len(tradeDays) == 0 {
		log.Error("no trading days for year", zap.Int("year", year))
		return res, nil
	}
	dayPos := make(map[int64]int, len(tradeDays))
	for i, day := range tradeDays {
		dayPos[day] = i
	}
	dayEndMS := btime.DateMS(refMS) + btime.MSecsDay - 1
	for _, symbol := range args.Symbols {
		bars := sortedBefore(data[symbol], dayEndMS)
		keep := make([]*Bar, 0, len(bars))
		for _, bar := range bars {
			// 不在年度交易日列表中的bar无法定位分组，丢弃（正常数据不会出现）
			if _, ok := dayPos[btime.DateMS(bar.Time)]; ok {
				keep = append(keep, bar)
			}
		}
		groups := groupBars(keep, func(bar *Bar) groupKey {
			return groupKey{day: int64(year), idx: dayPos[btime.DateMS(bar.Time)] / periodDays}
		})
		res.Data[symbol] = aggTail(groups, fields, args.BarCount)
	}
	return res, nil
}

type groupKey struct {
	day int64
	idx int
}

// groupBars 按key对已排序的bar做相邻分组，保持时间顺序
func groupBars(bars []*Bar, keyFn func(*Bar) groupKey) [][]*Bar {
	var groups [][]*Bar
	var lastKey groupKey
	for i, bar := range bars {
		key := keyFn(bar)
		if i == 0 || key != lastKey {
			groups = append(groups, []*Bar{bar})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], bar)
		}
		lastKey = key
	}
	return groups
}

func aggTail(groups [][]*Bar, fields []string, barCount int) []*Bar {
	out := make([]*Bar, 0, len(groups))
	for _, group := range groups {
		out = append(out, Aggregate(group, fields))
	}
	if len(out) > barCount {
		out = out[len(out)-barCount:]
	}
	return out
}

// sortedBefore 取时间戳不大于endMS的bar并升序排序（含未收线时间点）
func sortedBefore(bars []*Bar, endMS int64) []*Bar {
	keep := make([]*Bar, 0, len(bars))
	for _, bar := range bars {
		if bar.Time <= endMS {
			keep = append(keep, bar)
		}
	}
	slices.SortFunc(keep, func(a, b *Bar) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return keep
}

// floorDiv 向下取整除法，负偏移也能归入正确分组
func floorDiv(a, b int) int {
	quo := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		quo -= 1
	}
	return quo
}
