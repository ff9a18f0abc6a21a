package kdata_test

import (
	"context"
	"testing"

	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/calendar"
	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/feed"
	"github.com/khquant/khdata/kdata"
	"github.com/khquant/khdata/utils"
)

/*
genDayBars 构造一个交易日的1m数据：
9:30为异常集合竞价bar（高开低收均为base，量500），
上午9:31~11:30与下午13:01~15:00各120根，每根量100。
*/
func genDayBars(date string, base float64) []*kdata.Bar {
	bars := []*kdata.Bar{{
		Time: msAt(date + " 09:30"), Open: base, High: base, Low: base, Close: base, Volume: 500,
	}}
	addRange := func(startClock string, num int) {
		start := msAt(date + " " + startClock)
		for i := 0; i < num; i++ {
			price := base + 0.5 + float64(i)*0.01
			bars = append(bars, &kdata.Bar{
				Time: start + int64(i)*60000,
				Open: price, High: price + 0.1, Low: price - 0.1, Close: price + 0.05,
				Volume: 100,
			})
		}
	}
	addRange("09:31", 120)
	addRange("13:01", 120)
	return bars
}

func newMinuteSource(dates ...string) *feed.MemSource {
	src := feed.NewMemSource()
	for _, date := range dates {
		src.Put("000001.SZ", core.PeriodMin1, genDayBars(date, 10))
	}
	return src
}

func TestKlineValidation(t *testing.T) {
	src := feed.NewMemSource()
	cal := calendar.New(nil)
	ctx := context.Background()
	symbols := []string{"000001.SZ"}
	for _, period := range []string{"3x", "m5", ""} {
		args := &kdata.KlineArgs{Symbols: symbols, Period: period, BarCount: 10}
		if _, err := kdata.Kline(ctx, src, cal, args); err == nil {
			t.Errorf("period %q should fail", period)
		}
	}
	for _, num := range []int{0, -1, core.MaxBarCount + 1} {
		args := &kdata.KlineArgs{Symbols: symbols, Period: "1m", BarCount: num}
		if _, err := kdata.Kline(ctx, src, cal, args); err == nil {
			t.Errorf("barCount %d should fail", num)
		}
	}
	args := &kdata.KlineArgs{Period: "1m", BarCount: 10}
	if _, err := kdata.Kline(ctx, src, cal, args); err == nil {
		t.Errorf("empty symbols should fail")
	}
	bad := &kdata.KlineArgs{Symbols: symbols, Period: "1m", BarCount: 10, EndTime: "noon"}
	if _, err := kdata.Kline(ctx, src, cal, bad); err == nil {
		t.Errorf("bad end time should fail")
	}
}

func TestKlineNativeIncludesRef(t *testing.T) {
	src := feed.NewMemSource()
	src.Put("000001.SZ", core.PeriodMin1, []*kdata.Bar{
		minBar("2025-03-14 09:59", 10, 100),
		minBar("2025-03-14 10:00", 10.1, 110),
		minBar("2025-03-14 10:01", 10.2, 120),
	})
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "1m",
		BarCount: 10,
		EndTime:  "2025-03-14 10:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	// 与History相反，参考时间点的bar应包含在内
	if bars[1].Time != msAt("2025-03-14 10:00") {
		t.Errorf("last bar should be 10:00 snapshot")
	}
}

func TestKlineSynth15m(t *testing.T) {
	src := newMinuteSource("2025-03-10")
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "15m",
		BarCount: 10,
		EndTime:  "2025-03-10 10:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Time != msAt("2025-03-10 09:45") || bars[1].Time != msAt("2025-03-10 10:00") {
		t.Errorf("bucket boundaries wrong: %v %v", bars[0].Time, bars[1].Time)
	}
	// 9:30修正：首组open取集合竞价开盘价，量并入
	if !utils.EqualNearly(bars[0].Open, 10) {
		t.Errorf("first group open = %v, want 10", bars[0].Open)
	}
	if !utils.EqualNearly(bars[0].Volume, 500+15*100) {
		t.Errorf("first group volume = %v, want 2000", bars[0].Volume)
	}
	if !utils.EqualNearly(bars[1].Volume, 15*100) {
		t.Errorf("second group volume = %v, want 1500", bars[1].Volume)
	}
}

func TestKline2hAcrossLunch(t *testing.T) {
	src := newMinuteSource("2025-03-10")
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "2h",
		BarCount: 10,
		EndTime:  "2025-03-10 15:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	// 扣除午休后每天正好两根2小时bar，午休不拆分分组
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Time != msAt("2025-03-10 11:30") || bars[1].Time != msAt("2025-03-10 15:00") {
		t.Errorf("bucket ends = %s, %s", btime.ToDateStr(bars[0].Time, ""), btime.ToDateStr(bars[1].Time, ""))
	}
	if !utils.EqualNearly(bars[0].Volume, 500+120*100) {
		t.Errorf("morning volume = %v", bars[0].Volume)
	}
	if !utils.EqualNearly(bars[1].Volume, 120*100) {
		t.Errorf("afternoon volume = %v", bars[1].Volume)
	}
}

func TestKlineLiveBar(t *testing.T) {
	src := newMinuteSource("2025-03-10")
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "2h",
		BarCount: 10,
		EndTime:  "2025-03-10 10:30",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	// 未收线分组用已见到的子bar聚合为快照
	last := bars[0]
	if last.Time != msAt("2025-03-10 10:30") {
		t.Errorf("live bar time = %s", btime.ToDateStr(last.Time, ""))
	}
	if !utils.EqualNearly(last.Volume, 500+60*100) {
		t.Errorf("live bar volume = %v, want 6500", last.Volume)
	}
}

func TestKline3dYearAligned(t *testing.T) {
	src := feed.NewMemSource()
	// 2025-01-01为周三，无节假日日历下1月交易日为1,2,3,6,7,8,9,10...
	fullDays := []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-06",
		"2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
	for i, date := range fullDays {
		src.Put("000001.SZ", core.PeriodDay1, []*kdata.Bar{dayBar(date, 10+float64(i), 10.5+float64(i), 1000)})
		if date != "2025-01-02" {
			// 600519缺失1月2日，分组边界不应因此漂移
			src.Put("600519.SH", core.PeriodDay1, []*kdata.Bar{dayBar(date, 20+float64(i), 20.5+float64(i), 2000)})
		}
	}
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ", "600519.SH"},
		Period:   "3d",
		BarCount: 10,
		EndTime:  "20250110",
	})
	if err != nil {
		t.Fatal(err)
	}
	barsA := res.Data["000001.SZ"]
	barsB := res.Data["600519.SH"]
	if len(barsA) != 3 || len(barsB) != 3 {
		t.Fatalf("got %d/%d groups, want 3/3", len(barsA), len(barsB))
	}
	wantEnds := []string{"2025-01-03", "2025-01-08", "2025-01-10"}
	for i, end := range wantEnds {
		endMS := msAt(end + " 00:00")
		if barsA[i].Time != endMS {
			t.Errorf("A group %d time = %s, want %s", i, btime.ToDateStr(barsA[i].Time, ""), end)
		}
		if barsB[i].Time != endMS {
			t.Errorf("B group %d time = %s, want %s", i, btime.ToDateStr(barsB[i].Time, ""), end)
		}
	}
	// 首组聚合：open取1月1日，close取1月3日，量为三日之和
	if !utils.EqualNearly(barsA[0].Open, 10) || !utils.EqualNearly(barsA[0].Close, 12.5) {
		t.Errorf("A group0 ohlc wrong: o=%v c=%v", barsA[0].Open, barsA[0].Close)
	}
	if !utils.EqualNearly(barsA[0].Volume, 3000) {
		t.Errorf("A group0 volume = %v", barsA[0].Volume)
	}
	if !utils.EqualNearly(barsB[0].Volume, 4000) {
		t.Errorf("B group0 volume = %v, want two-day sum", barsB[0].Volume)
	}
}

func TestKlineYearRollback(t *testing.T) {
	src := feed.NewMemSource()
	src.Put("000001.SZ", core.PeriodDay1, []*kdata.Bar{
		dayBar("2024-12-30", 10, 10.5, 1000),
		dayBar("2024-12-31", 10.5, 11, 1100),
	})
	cal := calendar.New([]string{"2025-01-01"})
	// 参考时间早于2025年首个交易日，应回退按2024年对齐
	res, err := kdata.Kline(context.Background(), src, cal, &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "2d",
		BarCount: 10,
		EndTime:  "20250101",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	if bars[0].Time != msAt("2024-12-31 00:00") {
		t.Errorf("group end = %s", btime.ToDateStr(bars[0].Time, ""))
	}
	if !utils.EqualNearly(bars[0].Volume, 2100) {
		t.Errorf("volume = %v, want 2100", bars[0].Volume)
	}
}

func TestKlineDay1IncludesRefDate(t *testing.T) {
	src := feed.NewMemSource()
	src.Put("000001.SZ", core.PeriodDay1, []*kdata.Bar{
		dayBar("2025-03-13", 10, 10.5, 1000),
		dayBar("2025-03-14", 10.5, 11, 1100),
	})
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "1d",
		BarCount: 10,
		EndTime:  "20250314",
	})
	if err != nil {
		t.Fatal(err)
	}
	bars := res.Data["000001.SZ"]
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 incl ref date", len(bars))
	}
	if bars[1].Time != msAt("2025-03-14 00:00") {
		t.Errorf("ref date bar should be included")
	}
}

func TestKlineDefaultFields(t *testing.T) {
	src := newMinuteSource("2025-03-10")
	res, err := kdata.Kline(context.Background(), src, calendar.New(nil), &kdata.KlineArgs{
		Symbols:  []string{"000001.SZ"},
		Period:   "5m",
		BarCount: 5,
		EndTime:  "2025-03-10 10:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"time", "open", "high", "low", "close", "volume"}
	if len(res.Fields) != len(want) {
		t.Fatalf("fields = %v", res.Fields)
	}
	for i, name := range want {
		if res.Fields[i] != name {
			t.Errorf("fields[%d] = %s, want %s", i, res.Fields[i], name)
		}
	}
}
