package skiplist

import (
	"cmp"
	"iter"
)

// InsertResult 區分插入成功與 key 已存在
type InsertResult uint8

const (
	Inserted InsertResult = iota
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "Inserted"
	case AlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

// Store 有序 key-value 索引對外提供的操作
// Insert 只新增不覆寫；Delete 對不存在的 key 為 no-op
type Store[K cmp.Ordered, V any] interface {
	Insert(key K, value V) InsertResult
	Delete(key K) bool
	Search(key K) (V, bool)
	Contains(key K) bool
	Size() int
	All() iter.Seq2[K, V]
}

// Analyable 提供分析功能的介面
type Analyable[K cmp.Ordered, V any] interface {
	// GetHead 回傳 head 哨兵；沿著它走訪不會取得跳表的鎖，
	// 呼叫端必須保證走訪期間沒有並行的 Insert/Delete
	GetHead() Nodelike[K, V]
	// GetMaxStats 獲取節點數和目前最高層級
	GetMaxStats() (size int, level int)
}

type Nodelike[K cmp.Ordered, V any] interface {
	GetKey() K
	GetValue() V
	GetLevel() int
	GetNextAt(level int) Nodelike[K, V]
}
