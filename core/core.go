package core

const (
	// A股交易时段常量，分钟K线时间戳为区间结束时间
	SessionOpenHour  = 9
	SessionOpenMin   = 30 // 9:30集合竞价异常bar
	FirstBarMin      = 31 // 9:31为修正后首根有效分钟bar
	MorningCloseHour = 11
	MorningCloseMin  = 30
	NoonOpenHour     = 13
	SessionEndHour   = 15
	LunchBreakMins   = 90  // 午休11:31~13:00
	DayTradeMins     = 240 // 每个交易日有效分钟数
)

const (
	PeriodMin1 = "1m"
	PeriodMin5 = "5m"
	PeriodDay1 = "1d"
)

const (
	AdjNone  = "none"
	AdjFront = "front"
	AdjBack  = "back"
)

// MaxBarCount 单次查询允许返回的最大K线数量
const MaxBarCount = 240

// NativePeriods 数据源可直接提供的周期，其他周期需从1m合成
var NativePeriods = map[string]bool{
	PeriodMin1: true,
	PeriodMin5: true,
	PeriodDay1: true,
}
