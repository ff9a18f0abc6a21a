package core

import (
	"github.com/banbox/banexg/errs"
	"github.com/dgraph-io/ristretto"
)

var (
	Cache *ristretto.Cache
)

func Setup() *errs.Error {
	if Cache != nil {
		return nil
	}
	var err_ error
	Cache, err_ = ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err_ != nil {
		return errs.New(ErrRunTime, err_)
	}
	return nil
}

func GetCacheVal[T any](key interface{}, defVal T) T {
	if Cache == nil {
		return defVal
	}
	obj, has := Cache.Get(key)
	if has {
		if val, ok := obj.(T); ok {
			return val
		}
	}
	return defVal
}

func SetCacheVal(key interface{}, val interface{}, cost int64) {
	if Cache != nil {
		Cache.Set(key, val, cost)
	}
}
