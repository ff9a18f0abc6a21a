package kdata

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/banbox/banexg/errs"
	"github.com/khquant/khdata/core"
)

/*
Bar 一根K线，Time为毫秒时间戳（东八区语义的事件结束时间）。
open/high/low/close/volume/amount为固定字段，其他请求字段放入Extra。
*/
type Bar struct {
	Time   int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
	Extra  map[string]float64
}

func (b *Bar) Clone() *Bar {
	res := *b
	if b.Extra != nil {
		res.Extra = make(map[string]float64, len(b.Extra))
		for k, v := range b.Extra {
			res.Extra[k] = v
		}
	}
	return &res
}

func (b *Bar) Get(field string) float64 {
	switch field {
	case "open":
		return b.Open
	case "high":
		return b.High
	case "low":
		return b.Low
	case "close":
		return b.Close
	case "volume":
		return b.Volume
	case "amount":
		return b.Amount
	}
	return b.Extra[field]
}

func (b *Bar) Set(field string, val float64) {
	switch field {
	case "open":
		b.Open = val
	case "high":
		b.High = val
	case "low":
		b.Low = val
	case "close":
		b.Close = val
	case "volume":
		b.Volume = val
	case "amount":
		b.Amount = val
	default:
		if b.Extra == nil {
			b.Extra = make(map[string]float64)
		}
		b.Extra[field] = val
	}
}

/*
ResultSet 按标的组织的查询结果。
Symbols保持调用方传入顺序；无数据的标的对应空切片而非缺失。
Fields首列固定为time，其后为请求字段原始顺序。
*/
type ResultSet struct {
	Symbols []string
	Fields  []string
	Data    map[string][]*Bar
}

func newResultSet(symbols, fields []string) *ResultSet {
	res := &ResultSet{
		Symbols: symbols,
		Fields:  append([]string{"time"}, fields...),
		Data:    make(map[string][]*Bar, len(symbols)),
	}
	for _, sym := range symbols {
		res.Data[sym] = []*Bar{}
	}
	return res
}

var periodRegex = regexp.MustCompile(`^([0-9]+)([mhd])$`)

// PeriodSpec 周期规格，从"15m"/"2h"/"3d"解析
type PeriodSpec struct {
	Num  int
	Unit byte // 'm' 'h' 'd'
}

func ParsePeriod(text string) (*PeriodSpec, *errs.Error) {
	mat := periodRegex.FindStringSubmatch(text)
	if mat == nil {
		return nil, errs.NewMsg(core.ErrInvalidPeriod, "unSupport period fmt: %s", text)
	}
	num, _ := strconv.Atoi(mat[1])
	if num <= 0 {
		return nil, errs.NewMsg(core.ErrInvalidPeriod, "period num must be positive: %s", text)
	}
	return &PeriodSpec{Num: num, Unit: mat[2][0]}, nil
}

// Native 数据源是否原生支持此周期，无需从1m合成
func (p *PeriodSpec) Native() bool {
	return core.NativePeriods[p.String()]
}

func (p *PeriodSpec) String() string {
	return fmt.Sprintf("%d%c", p.Num, p.Unit)
}

/*
MarketSource 行情数据源。
Download将指定范围的原生周期数据刷新到本地；Read批量读取，
时间为毫秒闭开区间[startMS, endMS)，adjust为复权方式none/front/back。
*/
type MarketSource interface {
	Download(ctx context.Context, symbol, period string, startMS, endMS int64) *errs.Error
	Read(ctx context.Context, symbols, fields []string, period string, startMS, endMS int64,
		adjust string) (map[string][]*Bar, *errs.Error)
}
