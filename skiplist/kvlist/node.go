package kvlist

import (
	"cmp"

	"github.com/Hakuto4838/SkipListKV/skiplist"
)

// Node 跳表節點，key 建立後不可變，value 可原地更新
// forward[i] 為第 i 層的下一個節點，長度 level+1
type Node[K cmp.Ordered, V any] struct {
	key     K
	value   V
	forward []*Node[K, V]
}

func newNode[K cmp.Ordered, V any](key K, value V, level int) *Node[K, V] {
	return &Node[K, V]{
		key:     key,
		value:   value,
		forward: make([]*Node[K, V], level+1),
	}
}

func (nd *Node[K, V]) GetKey() K {
	return nd.key
}

func (nd *Node[K, V]) GetValue() V {
	return nd.value
}

// SetValue 只改 value，不影響 key 與層級
func (nd *Node[K, V]) SetValue(value V) {
	nd.value = value
}

func (nd *Node[K, V]) GetLevel() int {
	return len(nd.forward) - 1
}

func (nd *Node[K, V]) GetNextAt(level int) skiplist.Nodelike[K, V] {
	if level < 0 || level >= len(nd.forward) || nd.forward[level] == nil {
		return nil
	}
	return nd.forward[level]
}
