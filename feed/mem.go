package feed

import (
	"context"

	"github.com/banbox/banexg/errs"
	"github.com/khquant/khdata/kdata"
)

/*
MemSource 内存数据源，回测和测试中直接注入构造好的bar序列。
Download为空操作，只记录调用次数。
*/
type MemSource struct {
	bars    map[string]map[string][]*kdata.Bar // symbol -> period -> bars
	DownNum int
}

func NewMemSource() *MemSource {
	return &MemSource{bars: make(map[string]map[string][]*kdata.Bar)}
}

func (s *MemSource) Put(symbol, period string, bars []*kdata.Bar) {
	items, ok := s.bars[symbol]
	if !ok {
		items = make(map[string][]*kdata.Bar)
		s.bars[symbol] = items
	}
	items[period] = append(items[period], bars...)
}

func (s *MemSource) Download(ctx context.Context, symbol, period string, startMS, endMS int64) *errs.Error {
	s.DownNum += 1
	return nil
}

func (s *MemSource) Read(ctx context.Context, symbols, fields []string, period string,
	startMS, endMS int64, adjust string) (map[string][]*kdata.Bar, *errs.Error) {
	res := make(map[string][]*kdata.Bar, len(symbols))
	for _, symbol := range symbols {
		var keep []*kdata.Bar
		for _, bar := range s.bars[symbol][period] {
			if bar.Time >= startMS && bar.Time < endMS {
				keep = append(keep, bar.Clone())
			}
		}
		if keep != nil {
			res[symbol] = keep
		}
	}
	return res, nil
}
