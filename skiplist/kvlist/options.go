package kvlist

import (
	"math/rand"
	"time"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
)

// DefaultMaxLevel 預設最大層級
const DefaultMaxLevel = 18

// Options SkipList 建構參數
type Options struct {
	MaxLevel int   // 層級上限，<= 0 時使用 DefaultMaxLevel
	Seed     int64 // Source 為 nil 時用來建立亂數來源
	// Source 注入的亂數來源，測試時可固定；設定後忽略 Seed
	Source rand.Source
	Logger logging.Logger // nil 時不輸出
}

// DefaultOptions 返回默認配置，種子取自當前時間
func DefaultOptions() Options {
	return Options{
		MaxLevel: DefaultMaxLevel,
		Seed:     time.Now().UnixNano(),
	}
}

func (o Options) normalize() Options {
	if o.MaxLevel <= 0 {
		o.MaxLevel = DefaultMaxLevel
	}
	if o.Source == nil {
		o.Source = rand.NewSource(o.Seed)
	}
	o.Logger = logging.OrDefault(o.Logger)
	return o
}
