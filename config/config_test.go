package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYaml(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetConfig() {
	Loaded = false
	Data = Config{}
	DataDir = ""
}

func TestLoadConfigMerge(t *testing.T) {
	resetConfig()
	defer resetConfig()
	dir := t.TempDir()
	base := writeYaml(t, dir, "base.yml", "name: khdata\nholidays: [\"2025-10-01\"]\nmin_lookback_days: 20\n")
	local := writeYaml(t, dir, "local.yml", "holidays: [\"2025-10-01\", \"2025-10-02\"]\n")
	args := &CmdArgs{Configs: ArrString{base, local}, DataDir: dir, NoDefault: true}
	if err := LoadConfig(args); err != nil {
		t.Fatal(err)
	}
	if Data.Name != "khdata" {
		t.Errorf("name = %s", Data.Name)
	}
	// 后加载的配置整体覆盖同名键
	if len(Data.Holidays) != 2 {
		t.Errorf("holidays = %v", Data.Holidays)
	}
	if Data.MinLookbackDays != 20 {
		t.Errorf("min_lookback_days = %d", Data.MinLookbackDays)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	resetConfig()
	defer resetConfig()
	dir := t.TempDir()
	path := writeYaml(t, dir, "cfg.yml", "name: khdata\n")
	args := &CmdArgs{Configs: ArrString{path}, DataDir: dir, NoDefault: true}
	if err := LoadConfig(args); err != nil {
		t.Fatal(err)
	}
	if Data.DbFile != filepath.Join(dir, "kline.db") {
		t.Errorf("db_file = %s", Data.DbFile)
	}
	if Data.MinLookbackDays != 10 || Data.DayLookbackMult != 5 || Data.DefLookbackMult != 3 {
		t.Errorf("lookback defaults wrong: %d %d %d", Data.MinLookbackDays,
			Data.DayLookbackMult, Data.DefLookbackMult)
	}
}

func TestLoadConfigBadHoliday(t *testing.T) {
	resetConfig()
	defer resetConfig()
	dir := t.TempDir()
	path := writeYaml(t, dir, "cfg.yml", "holidays: [\"2025/10/01\"]\n")
	args := &CmdArgs{Configs: ArrString{path}, DataDir: dir, NoDefault: true}
	if err := LoadConfig(args); err == nil {
		t.Errorf("holiday not in 2006-01-02 format should fail")
	}
}

func TestLoadConfigOnce(t *testing.T) {
	resetConfig()
	defer resetConfig()
	dir := t.TempDir()
	path := writeYaml(t, dir, "cfg.yml", "name: first\n")
	args := &CmdArgs{Configs: ArrString{path}, DataDir: dir, NoDefault: true}
	if err := LoadConfig(args); err != nil {
		t.Fatal(err)
	}
	other := writeYaml(t, dir, "other.yml", "name: second\n")
	if err := LoadConfig(&CmdArgs{Configs: ArrString{other}, NoDefault: true}); err != nil {
		t.Fatal(err)
	}
	if Data.Name != "first" {
		t.Errorf("reload should be a no-op, name = %s", Data.Name)
	}
}

func TestCmdArgsInit(t *testing.T) {
	args := &CmdArgs{RawSymbols: "000001.SZ,600519.SH, ", RawFields: ""}
	args.Init()
	if len(args.Symbols) != 2 {
		t.Errorf("symbols = %v", args.Symbols)
	}
	want := []string{"open", "high", "low", "close", "volume"}
	if len(args.Fields) != len(want) {
		t.Fatalf("fields = %v", args.Fields)
	}
	for i, name := range want {
		if args.Fields[i] != name {
			t.Errorf("fields[%d] = %s", i, args.Fields[i])
		}
	}
}
