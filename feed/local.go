package feed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/khquant/khdata/core"
	"github.com/khquant/khdata/kdata"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

/*
Upstream 远端行情获取原语，由具体行情终端实现。
LocalSource通过它回补本地缓存；测试中可注入伪实现。
*/
type Upstream interface {
	Fetch(ctx context.Context, symbol, period string, startMS, endMS int64) ([]*kdata.Bar, *errs.Error)
}

const ddlKline = `
CREATE TABLE kline (
  symbol TEXT NOT NULL,
  period TEXT NOT NULL,
  time INTEGER NOT NULL,
  open REAL NOT NULL DEFAULT 0,
  high REAL NOT NULL DEFAULT 0,
  low REAL NOT NULL DEFAULT 0,
  close REAL NOT NULL DEFAULT 0,
  volume REAL NOT NULL DEFAULT 0,
  amount REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (symbol, period, time)
);`

const klineInsConflict = `
ON CONFLICT (symbol, period, time)
DO UPDATE SET
open = EXCLUDED.open,
high = EXCLUDED.high,
low = EXCLUDED.low,
close = EXCLUDED.close,
volume = EXCLUDED.volume,
amount = EXCLUDED.amount`

/*
LocalSource 本地sqlite行情缓存，对应行情终端的本地数据目录。
Download从上游抓取并覆盖写入，Read只查本地。复权由上游完成，
本地按抓取时的复权口径存储。
*/
type LocalSource struct {
	db *sql.DB
	up Upstream
}

func NewLocalSource(path string, up Upstream) (*LocalSource, *errs.Error) {
	connStr := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", path)
	db, err_ := sql.Open("sqlite", connStr)
	if err_ != nil {
		return nil, errs.New(core.ErrDbConnFail, err_)
	}
	checkSql := "SELECT COUNT(*) FROM sqlite_schema WHERE type='table' AND name=?;"
	var count int
	err_ = db.QueryRow(checkSql, "kline").Scan(&count)
	if err_ != nil {
		return nil, errs.New(core.ErrDbReadFail, err_)
	}
	if count == 0 {
		log.Info("init sqlite structure", zap.String("path", path))
		if _, err_ = db.Exec(ddlKline); err_ != nil {
			return nil, errs.New(core.ErrDbExecFail, err_)
		}
	}
	return &LocalSource{db: db, up: up}, nil
}

func (s *LocalSource) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *LocalSource) Download(ctx context.Context, symbol, period string, startMS, endMS int64) *errs.Error {
	if s.up == nil {
		return errs.NewMsg(core.ErrSourceFail, "no upstream for download")
	}
	bars, err := s.up.Fetch(ctx, symbol, period, startMS, endMS)
	if err != nil {
		return err
	}
	return s.Insert(ctx, symbol, period, bars)
}

// Insert 覆盖写入一批bar，主键冲突时更新
func (s *LocalSource) Insert(ctx context.Context, symbol, period string, bars []*kdata.Bar) *errs.Error {
	if len(bars) == 0 {
		return nil
	}
	tx, err_ := s.db.BeginTx(ctx, nil)
	if err_ != nil {
		return errs.New(core.ErrDbExecFail, err_)
	}
	insSql := "INSERT INTO kline (symbol, period, time, open, high, low, close, volume, amount) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)" + klineInsConflict
	stmt, err_ := tx.PrepareContext(ctx, insSql)
	if err_ != nil {
		tx.Rollback()
		return errs.New(core.ErrDbExecFail, err_)
	}
	for _, bar := range bars {
		_, err_ = stmt.ExecContext(ctx, symbol, period, bar.Time, bar.Open, bar.High,
			bar.Low, bar.Close, bar.Volume, bar.Amount)
		if err_ != nil {
			stmt.Close()
			tx.Rollback()
			return errs.New(core.ErrDbExecFail, err_)
		}
	}
	stmt.Close()
	if err_ = tx.Commit(); err_ != nil {
		return errs.New(core.ErrDbExecFail, err_)
	}
	return nil
}

func (s *LocalSource) Read(ctx context.Context, symbols, fields []string, period string,
	startMS, endMS int64, adjust string) (map[string][]*kdata.Bar, *errs.Error) {
	dctSql := "SELECT time, open, high, low, close, volume, amount FROM kline " +
		"WHERE symbol = ? AND period = ? AND time >= ? AND time < ? ORDER BY time"
	res := make(map[string][]*kdata.Bar, len(symbols))
	for _, symbol := range symbols {
		rows, err_ := s.db.QueryContext(ctx, dctSql, symbol, period, startMS, endMS)
		if err_ != nil {
			return nil, errs.New(core.ErrDbReadFail, err_)
		}
		var bars []*kdata.Bar
		for rows.Next() {
			var bar kdata.Bar
			err_ = rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close,
				&bar.Volume, &bar.Amount)
			if err_ != nil {
				rows.Close()
				return nil, errs.New(core.ErrDbReadFail, err_)
			}
			bars = append(bars, &bar)
		}
		rows.Close()
		if err_ = rows.Err(); err_ != nil {
			return nil, errs.New(core.ErrDbReadFail, err_)
		}
		if bars != nil {
			res[symbol] = bars
		}
	}
	return res, nil
}
