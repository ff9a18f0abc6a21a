package kdata

import (
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/core"
)

/*
Aggregate
将一组子bar合并为一根粗粒度bar。字段规则：
time取末根，open取首根，high取最大，low取最小，close取末根，
volume/amount累加，其余请求字段按"取末根"透传。
入参须已按时间升序排序，本函数不做排序。
*/
func Aggregate(group []*Bar, fields []string) *Bar {
	if len(group) == 0 {
		return nil
	}
	first, last := group[0], group[len(group)-1]
	res := &Bar{Time: last.Time}
	for _, field := range fields {
		switch field {
		case "open":
			res.Open = first.Open
		case "high":
			high := group[0].High
			for _, b := range group[1:] {
				if b.High > high {
					high = b.High
				}
			}
			res.High = high
		case "low":
			low := group[0].Low
			for _, b := range group[1:] {
				if b.Low < low {
					low = b.Low
				}
			}
			res.Low = low
		case "close":
			res.Close = last.Close
		case "volume":
			sum := float64(0)
			for _, b := range group {
				sum += b.Volume
			}
			res.Volume = sum
		case "amount":
			sum := float64(0)
			for _, b := range group {
				sum += b.Amount
			}
			res.Amount = sum
		default:
			res.Set(field, last.Get(field))
		}
	}
	return res
}

/*
MergeAuctionBar
修复每日9:30分钟bar的数据缺陷：该bar的高开低收均为开盘价，
成交量归属也不完整。若9:31的bar存在，则把9:30的open赋给9:31，
volume/amount累加到9:31，并丢弃9:30；9:31缺失时保留9:30不处理。
不修改原始数据。
*/
func MergeAuctionBar(bars []*Bar, fields []string) []*Bar {
	if len(bars) == 0 {
		return bars
	}
	has := make(map[string]bool, len(fields))
	for _, f := range fields {
		has[f] = true
	}
	res := make([]*Bar, 0, len(bars))
	for i := 0; i < len(bars); i++ {
		bar := bars[i]
		t := btime.MSToTime(bar.Time)
		if t.Hour() == core.SessionOpenHour && t.Minute() == core.SessionOpenMin && i+1 < len(bars) {
			nt := btime.MSToTime(bars[i+1].Time)
			sameDay := btime.DateMS(bars[i+1].Time) == btime.DateMS(bar.Time)
			if sameDay && nt.Hour() == core.SessionOpenHour && nt.Minute() == core.FirstBarMin {
				next := bars[i+1].Clone()
				if has["open"] {
					next.Open = bar.Open
				}
				if has["volume"] {
					next.Volume += bar.Volume
				}
				if has["amount"] {
					next.Amount += bar.Amount
				}
				res = append(res, next)
				i++
				continue
			}
		}
		res = append(res, bar)
	}
	return res
}
