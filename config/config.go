package config

import (
	"os"
	"path/filepath"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/utils"
	"gopkg.in/yaml.v3"
)

func GetDataDir() string {
	if DataDir != "" {
		return DataDir
	}
	dataDir := os.Getenv("KhDataDir")
	if dataDir != "" {
		DataDir = dataDir
	}
	return DataDir
}

/*
LoadConfig
加载并合并yaml配置。默认读取数据目录下的config.yml和config.local.yml，
再合并-config指定的文件，后加载的覆盖先加载的。
*/
func LoadConfig(args *CmdArgs) *errs.Error {
	if Loaded {
		return nil
	}
	if args.DataDir != "" {
		DataDir = args.DataDir
	}
	var paths []string
	if !args.NoDefault {
		dataDir := GetDataDir()
		if dataDir != "" {
			tryNames := []string{"config.yml", "config.local.yml"}
			for _, name := range tryNames {
				path := filepath.Join(dataDir, name)
				if _, err := os.Stat(path); err == nil {
					paths = append(paths, path)
				}
			}
		}
	}
	paths = append(paths, args.Configs...)
	cfg, err := ParseConfigs(paths)
	if err != nil {
		return err
	}
	cfg.apply()
	err = cfg.Validate()
	if err != nil {
		return err
	}
	Data = *cfg
	Args = args
	Loaded = true
	return nil
}

func ParseConfigs(paths []string) (*Config, *errs.Error) {
	var res Config
	var merged = make(map[string]interface{})
	for _, path := range paths {
		log.Info("Using " + path)
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.NewFull(core.ErrIOReadFail, err, "Read %s Fail", path)
		}
		var unpak map[string]interface{}
		err = yaml.Unmarshal(fileData, &unpak)
		if err != nil {
			return nil, errs.NewFull(core.ErrBadConfig, err, "Unmarshal %s Fail", path)
		}
		utils.DeepCopyMap(merged, unpak)
	}
	err := mapstructure.Decode(merged, &res)
	if err != nil {
		return nil, errs.NewFull(core.ErrBadConfig, err, "decode Config Fail")
	}
	return &res, nil
}

// apply 填充默认值
func (c *Config) apply() {
	if c.DataDir == "" {
		c.DataDir = GetDataDir()
	}
	if c.DbFile == "" && c.DataDir != "" {
		c.DbFile = filepath.Join(c.DataDir, "kline.db")
	}
	if c.MinLookbackDays == 0 {
		c.MinLookbackDays = 10
	}
	if c.DayLookbackMult == 0 {
		c.DayLookbackMult = 5
	}
	if c.DefLookbackMult == 0 {
		c.DefLookbackMult = 3
	}
}

func (c *Config) Validate() *errs.Error {
	valid := validator.New()
	err := valid.Struct(c)
	if err != nil {
		return errs.New(core.ErrBadConfig, err)
	}
	return nil
}
