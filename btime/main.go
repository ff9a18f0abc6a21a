package btime

import (
	"time"
	"unicode"

	"github.com/banbox/banexg/errs"
	"github.com/khquant/khdata/core"
)

var (
	// LocCN A股行情时间戳使用东八区本地时间
	LocCN = time.FixedZone("CST", 8*3600)
)

const (
	MSecsMin  = int64(60000)
	MSecsHour = MSecsMin * 60
	MSecsDay  = MSecsHour * 24
)

/*
TimeMS
获取当前13位毫秒时间戳
*/
func TimeMS() int64 {
	return time.Now().UnixMilli()
}

func Now() *time.Time {
	res := time.Now().In(LocCN)
	return &res
}

func MSToTime(timeMSecs int64) *time.Time {
	seconds := timeMSecs / 1000
	nanos := (timeMSecs % 1000) * 1000000
	res := time.Unix(seconds, nanos).In(LocCN)
	return &res
}

/*
ParseTimeMS
将时间字符串转为13位毫秒时间戳
支持的形式：
20060102
2006-01-02
20060102 150405
2006-01-02 15:04:05
*/
func ParseTimeMS(timeStr string) (int64, *errs.Error) {
	textLen := len(timeStr)
	digitNum := CountDigit(timeStr)
	if textLen == 8 && digitNum == 8 {
		return dateToMS("20060102", timeStr)
	} else if textLen == 10 && digitNum == 8 {
		return dateToMS("2006-01-02", timeStr)
	} else if textLen == 15 && digitNum == 14 {
		return dateToMS("20060102 150405", timeStr)
	} else if textLen == 19 && digitNum == 14 {
		return dateToMS("2006-01-02 15:04:05", timeStr)
	}
	return 0, errs.NewMsg(core.ErrInvalidTimeFmt, "unSupport date fmt: %s", timeStr)
}

/*
ParseKlineTimeMS
khKline的结束时间解析，在ParseTimeMS基础上额外支持分钟精度：
20060102 1504
2006-01-02 15:04
秒数部分会被截断归零
*/
func ParseKlineTimeMS(timeStr string) (int64, *errs.Error) {
	textLen := len(timeStr)
	digitNum := CountDigit(timeStr)
	var stamp int64
	var err *errs.Error
	if textLen == 13 && digitNum == 12 {
		stamp, err = dateToMS("20060102 1504", timeStr)
	} else if textLen == 16 && digitNum == 12 {
		stamp, err = dateToMS("2006-01-02 15:04", timeStr)
	} else {
		stamp, err = ParseTimeMS(timeStr)
	}
	if err != nil {
		return 0, err
	}
	return TruncMinuteMS(stamp), nil
}

func dateToMS(layout, timeStr string) (int64, *errs.Error) {
	t, err := time.ParseInLocation(layout, timeStr, LocCN)
	if err != nil {
		return 0, errs.NewMsg(core.ErrInvalidTimeFmt, "parse %s fail: %s", layout, timeStr)
	}
	return t.UnixMilli(), nil
}

/*
ToDateStr
将13位毫秒时间戳转为东八区时间字符串
*/
func ToDateStr(timeMSecs int64, format string) string {
	if format == "" {
		format = "2006-01-02 15:04:05"
	}
	return MSToTime(timeMSecs).Format(format)
}

// DateMS 截断到东八区当日零点
func DateMS(timeMSecs int64) int64 {
	t := MSToTime(timeMSecs)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, LocCN)
	return day.UnixMilli()
}

// TruncMinuteMS 秒数归零，K线查询只支持分钟精度
func TruncMinuteMS(timeMSecs int64) int64 {
	return timeMSecs / MSecsMin * MSecsMin
}

func CountDigit(text string) int {
	count := 0
	for _, c := range text {
		if unicode.IsDigit(c) {
			count += 1
		}
	}
	return count
}

// YearOf 时间戳对应的东八区年份
func YearOf(timeMSecs int64) int {
	return MSToTime(timeMSecs).Year()
}
