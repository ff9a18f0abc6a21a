package feed

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banbox/banexg/errs"
	"github.com/khquant/khdata/btime"
	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/kdata"
)

/*
CsvUpstream 以csv文件目录模拟行情上游，用于离线导入：
<dir>/<symbol>_<period>.csv，首行为表头，
列为time,open,high,low,close,volume[,amount]，
time为13位毫秒时间戳或支持的时间字符串。
*/
type CsvUpstream struct {
	Dir string
}

func (u *CsvUpstream) Fetch(ctx context.Context, symbol, period string, startMS, endMS int64) ([]*kdata.Bar, *errs.Error) {
	path := filepath.Join(u.Dir, symbol+"_"+period+".csv")
	file, err_ := os.Open(path)
	if err_ != nil {
		return nil, errs.New(core.ErrIOReadFail, err_)
	}
	defer file.Close()
	rows, err_ := csv.NewReader(file).ReadAll()
	if err_ != nil {
		return nil, errs.New(core.ErrIOReadFail, err_)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}
	if _, ok := cols["time"]; !ok {
		return nil, errs.NewMsg(core.ErrIOReadFail, "csv %s missing time column", path)
	}
	var bars []*kdata.Bar
	for _, row := range rows[1:] {
		stamp, err := parseStamp(row[cols["time"]])
		if err != nil {
			return nil, err
		}
		if stamp < startMS || stamp >= endMS {
			continue
		}
		bar := &kdata.Bar{Time: stamp}
		for name, idx := range cols {
			if name == "time" || idx >= len(row) {
				continue
			}
			val, err_ := strconv.ParseFloat(row[idx], 64)
			if err_ != nil {
				return nil, errs.NewFull(core.ErrIOReadFail, err_, "csv %s bad %s", path, name)
			}
			bar.Set(name, val)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseStamp(text string) (int64, *errs.Error) {
	if len(text) == 13 && btime.CountDigit(text) == 13 {
		msecs, err_ := strconv.ParseInt(text, 10, 64)
		if err_ == nil {
			return msecs, nil
		}
	}
	return btime.ParseTimeMS(text)
}
