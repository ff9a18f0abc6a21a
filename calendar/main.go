package calendar

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/config"
	"github.com/khquant/khdata/core"
	"go.uber.org/zap"
)

/*
Calendar 交易日历。
节假日集合构造后不可变；按年份的交易日列表惰性计算并缓存，只增不失效。
多个实例互相隔离，测试可自行构造，进程级默认实例用Default()获取。
*/
type Calendar struct {
	id       uint32
	holidays map[string]bool // "2006-01-02"
	mu       sync.Mutex
	years    map[int][]int64 // 年份 -> 当年交易日零点毫秒，升序
}

var (
	defInst *Calendar
	defOnce sync.Once
	instNum uint32
)

func New(holidays []string) *Calendar {
	res := &Calendar{
		id:       atomic.AddUint32(&instNum, 1),
		holidays: make(map[string]bool, len(holidays)),
		years:    make(map[int][]int64),
	}
	for _, it := range holidays {
		res.holidays[it] = true
	}
	return res
}

// Default 进程级默认日历：内置休市日加配置中补充的holidays
func Default() *Calendar {
	defOnce.Do(func() {
		items := make([]string, 0, len(cnHolidays)+len(config.Data.Holidays))
		items = append(items, cnHolidays...)
		items = append(items, config.Data.Holidays...)
		defInst = New(items)
	})
	return defInst
}

/*
IsTradingDay
判断是否交易日：周一到周五且非节假日。
无法解析的日期记录警告后按交易日处理，避免数据被静默丢弃。
*/
func (c *Calendar) IsTradingDay(dateStr string) bool {
	stamp, err := btime.ParseTimeMS(dateStr)
	if err != nil {
		log.Warn("parse date fail, treat as trading day", zap.String("date", dateStr))
		return true
	}
	return c.IsTradingDayMS(stamp)
}

func (c *Calendar) IsTradingDayMS(timeMSecs int64) bool {
	dateStr := btime.ToDateStr(btime.DateMS(timeMSecs), "2006-01-02")
	cacheKey := fmt.Sprintf("calday_%d_%s", c.id, dateStr)
	if val := core.GetCacheVal(cacheKey, 0); val != 0 {
		return val > 0
	}
	res := c.calcTradingDay(timeMSecs, dateStr)
	state := -1
	if res {
		state = 1
	}
	core.SetCacheVal(cacheKey, state, 1)
	return res
}

func (c *Calendar) calcTradingDay(timeMSecs int64, dateStr string) bool {
	wd := btime.MSToTime(timeMSecs).Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holidays[dateStr]
}

/*
YearFirstTradingDay
返回指定年份首个交易日的零点毫秒。从1月1日起最多扫描31天，
扫描失败时退回1月1日并记录警告，正常数据下不会发生。
*/
func (c *Calendar) YearFirstTradingDay(year int) int64 {
	janFirst := time.Date(year, 1, 1, 0, 0, 0, 0, btime.LocCN).UnixMilli()
	curMS := janFirst
	for i := 0; i < 31; i++ {
		if c.IsTradingDayMS(curMS) {
			return curMS
		}
		curMS += btime.MSecsDay
	}
	log.Warn("no trading day found from Jan 1, fallback", zap.Int("year", year))
	return janFirst
}

/*
TradingDaysBetween
返回[startMS, endMS]闭区间内所有交易日的零点毫秒，升序无重复。
逐日线性扫描，与分钟级聚合的调用频率相比开销可忽略。
*/
func (c *Calendar) TradingDaysBetween(startMS, endMS int64) []int64 {
	var res []int64
	curMS := btime.DateMS(startMS)
	endMS = btime.DateMS(endMS)
	for curMS <= endMS {
		if c.IsTradingDayMS(curMS) {
			res = append(res, curMS)
		}
		curMS += btime.MSecsDay
	}
	return res
}

// YearTradingDays 当年全部交易日，按年缓存，只增不失效
func (c *Calendar) YearTradingDays(year int) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if days, ok := c.years[year]; ok {
		return days
	}
	start := time.Date(year, 1, 1, 0, 0, 0, 0, btime.LocCN).UnixMilli()
	end := time.Date(year, 12, 31, 0, 0, 0, 0, btime.LocCN).UnixMilli()
	days := c.TradingDaysBetween(start, end)
	c.years[year] = days
	return days
}

// TradingDayCount 闭区间内交易日天数
func (c *Calendar) TradingDayCount(startStr, endStr string) (int, *errs.Error) {
	startMS, err := btime.ParseTimeMS(startStr)
	if err != nil {
		return 0, err
	}
	endMS, err := btime.ParseTimeMS(endStr)
	if err != nil {
		return 0, err
	}
	if startMS > endMS {
		return 0, errs.NewMsg(core.ErrInvalidParam, "start %s after end %s", startStr, endStr)
	}
	return len(c.TradingDaysBetween(startMS, endMS)), nil
}

// IsTradingTime 是否处于交易时段（上午9:30~11:30，下午13:00~15:00）
func (c *Calendar) IsTradingTime(t time.Time) bool {
	t = t.In(btime.LocCN)
	if !c.IsTradingDayMS(t.UnixMilli()) {
		return false
	}
	mins := t.Hour()*60 + t.Minute()
	morning := mins >= core.SessionOpenHour*60+core.SessionOpenMin &&
		mins <= core.MorningCloseHour*60+core.MorningCloseMin
	noon := mins >= core.NoonOpenHour*60 && mins <= core.SessionEndHour*60
	return morning || noon
}
