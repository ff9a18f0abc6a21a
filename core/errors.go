package core

const (
	ErrBadConfig = -1*iota - 100
	ErrInvalidPath
	ErrIOReadFail
	ErrIOWriteFail
	ErrDbConnFail
	ErrDbReadFail
	ErrDbExecFail
	ErrInvalidParam
	ErrInvalidPeriod
	ErrInvalidTimeFmt
	ErrInvalidBars
	ErrInvalidSymbol
	ErrSourceFail
	ErrCacheErr
	ErrRunTime
)

var ErrCodeNames = map[int]string{
	ErrBadConfig:      "BadConfig",
	ErrInvalidPath:    "InvalidPath",
	ErrIOReadFail:     "IOReadFail",
	ErrIOWriteFail:    "IOWriteFail",
	ErrDbConnFail:     "DbConnFail",
	ErrDbReadFail:     "DbReadFail",
	ErrDbExecFail:     "DbExecFail",
	ErrInvalidParam:   "InvalidParam",
	ErrInvalidPeriod:  "InvalidPeriod",
	ErrInvalidTimeFmt: "InvalidTimeFmt",
	ErrInvalidBars:    "InvalidBars",
	ErrInvalidSymbol:  "InvalidSymbol",
	ErrSourceFail:     "SourceFail",
	ErrCacheErr:       "CacheErr",
	ErrRunTime:        "RunTime",
}
