package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/utils"
)

func TestCsvFetch(t *testing.T) {
	dir := t.TempDir()
	content := "time,open,high,low,close,volume\n" +
		"1000,10,10.5,9.8,10.2,100\n" +
		"2025-03-14 10:00:00,10.2,10.4,10,10.1,200\n"
	path := filepath.Join(dir, "000001.SZ_1m.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	up := &CsvUpstream{Dir: dir}
	bars, err := up.Fetch(context.Background(), "000001.SZ", core.PeriodMin1, 0, 2e15)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	// 毫秒戳与时间字符串混用均可识别
	if bars[0].Time != 1000 {
		t.Errorf("time = %d", bars[0].Time)
	}
	if bars[1].Time <= bars[0].Time {
		t.Errorf("string stamp not parsed: %d", bars[1].Time)
	}
	if !utils.EqualNearly(bars[1].Volume, 200) {
		t.Errorf("volume = %v", bars[1].Volume)
	}
}

func TestCsvFetchRange(t *testing.T) {
	dir := t.TempDir()
	content := "time,open,high,low,close,volume\n1000,10,10,10,10,100\n2000,11,11,11,11,200\n"
	path := filepath.Join(dir, "000001.SZ_1d.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	up := &CsvUpstream{Dir: dir}
	bars, err := up.Fetch(context.Background(), "000001.SZ", core.PeriodDay1, 0, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 || bars[0].Time != 1000 {
		t.Errorf("range filter wrong: %v", bars)
	}
}

func TestCsvFetchMissing(t *testing.T) {
	up := &CsvUpstream{Dir: t.TempDir()}
	if _, err := up.Fetch(context.Background(), "600519.SH", core.PeriodMin1, 0, 2000); err == nil {
		t.Errorf("missing file should fail")
	}
}

func TestCsvFetchBadHeader(t *testing.T) {
	dir := t.TempDir()
	content := "stamp,open\n1000,10\n"
	if err := os.WriteFile(filepath.Join(dir, "000001.SZ_1m.csv"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	up := &CsvUpstream{Dir: dir}
	if _, err := up.Fetch(context.Background(), "000001.SZ", core.PeriodMin1, 0, 2000); err == nil {
		t.Errorf("missing time column should fail")
	}
}
