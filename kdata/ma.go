package kdata

import (
	"context"

	"github.com/banbox/banexg/errs"
	"github.com/khquant/khdata/core"
	"github.com/shopspring/decimal"
)

/*
MA
计算标的某字段最近n根bar的均线值，基于History取数，
不含endTime当根，适合策略在bar收线后取前n根均值。
field默认close，period默认1d。历史不足n根时返回错误。
*/
func MA(ctx context.Context, src MarketSource, symbol string, n int,
	field, period, endTime, adjust string) (float64, *errs.Error) {
	if field == "" {
		field = "close"
	}
	if period == "" {
		period = core.PeriodDay1
	}
	res, err := History(ctx, src, &HistoryArgs{
		Symbols:  []string{symbol},
		Fields:   []string{field},
		BarCount: n,
		Period:   period,
		RefTime:  endTime,
		Adjust:   adjust,
	})
	if err != nil {
		return 0, err
	}
	bars := res.Data[symbol]
	if len(bars) < n {
		return 0, errs.NewMsg(core.ErrInvalidBars, "%s: insufficient bars for MA%d: %d", symbol, n, len(bars))
	}
	// 用decimal求和，避免长序列浮点累加的误差抖动
	sum := decimal.Zero
	for _, bar := range bars {
		sum = sum.Add(decimal.NewFromFloat(bar.Get(field)))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()
	return avg, nil
}
