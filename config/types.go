package config

var (
	Data   Config
	Args   *CmdArgs
	Loaded bool

	DataDir string
)

type Config struct {
	Name     string   `mapstructure:"name"`
	DataDir  string   `mapstructure:"data_dir"`
	DbFile   string   `mapstructure:"db_file"`
	Holidays []string `mapstructure:"holidays" validate:"dive,datetime=2006-01-02"` // 法定节假日，YYYY-MM-DD
	CsvDir   string   `mapstructure:"csv_dir"`                                      // download命令的上游csv数据目录

	// 回看天数启发式参数，均为宽松估计而非精确推导，见khHistory/khKline
	MinLookbackDays int `mapstructure:"min_lookback_days" validate:"min=0"` // 分钟数据最少回看天数，默认10
	DayLookbackMult int `mapstructure:"day_lookback_mult" validate:"min=0"` // 日线回看倍数，默认5
	DefLookbackMult int `mapstructure:"def_lookback_mult" validate:"min=0"` // 其他周期回看倍数，默认3
}

type ArrString []string

func (i *ArrString) String() string {
	return "my string representation"
}

func (i *ArrString) Set(value string) error {
	*i = append(*i, value)
	return nil
}

type CmdArgs struct {
	Configs    ArrString
	Logfile    string
	DataDir    string
	NoDefault  bool
	LogLevel   string
	Debug      bool
	RawSymbols string
	Symbols    []string
	RawFields  string
	Fields     []string
	Period     string
	BarCount   int
	RefTime    string
	StartTime  string
	EndTime    string
	AdjType    string // 复权类型: front,back,none
	SkipPaused bool
	Force      bool
}
