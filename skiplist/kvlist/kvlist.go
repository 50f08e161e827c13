// Package kvlist 以機率跳表實作的記憶體內有序 key-value 索引。
//
// 寫入 (Insert/Delete) 取得實例自有的互斥鎖，整個操作期間獨佔；
// 讀取 (Search/Contains/Levels/Display/Dump) 取得共享讀鎖，
// 因此讀取永遠不會看到插入或刪除進行到一半的結構。
// All 只在前進到下一個節點時持有讀鎖，呼叫端的迴圈本體不在鎖內執行。
package kvlist

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"math/rand"
	"strings"
	"sync"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist"
)

const probability = 0.5

type SkipList[K cmp.Ordered, V any] struct {
	mu       sync.RWMutex
	head     *Node[K, V]
	maxLevel int
	level    int // 目前最高且至少有一個實際節點的層級
	size     int
	rand     *rand.Rand
	log      logging.Logger
}

var _ skiplist.Store[int, string] = (*SkipList[int, string])(nil)
var _ skiplist.Analyable[int, string] = (*SkipList[int, string])(nil)

// New 建立最大層級為 maxLevel 的跳表，亂數種子取自當前時間
func New[K cmp.Ordered, V any](maxLevel int) *SkipList[K, V] {
	opts := DefaultOptions()
	opts.MaxLevel = maxLevel
	return NewWithOptions[K, V](opts)
}

func NewWithOptions[K cmp.Ordered, V any](opts Options) *SkipList[K, V] {
	opts = opts.normalize()
	var key K
	var value V
	return &SkipList[K, V]{
		head:     newNode(key, value, opts.MaxLevel),
		maxLevel: opts.MaxLevel,
		rand:     rand.New(opts.Source),
		log:      opts.Logger,
	}
}

// randomLevel 從 1 開始擲硬幣，正面就加一層，上限 maxLevel
// 只在持有寫鎖時呼叫，rand.Rand 本身不是並行安全的
func (sl *SkipList[K, V]) randomLevel() int {
	lvl := 1
	for lvl < sl.maxLevel && sl.rand.Float64() < probability {
		lvl++
	}
	return lvl
}

// findUpdate 由最高層往下走，update[i] 為第 i 層最後一個 key 小於目標的節點
func (sl *SkipList[K, V]) findUpdate(key K, update []*Node[K, V]) *Node[K, V] {
	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.forward[h] != nil && curr.forward[h].key < key {
			curr = curr.forward[h]
		}
		update[h] = curr
	}
	return curr.forward[0]
}

// Insert 插入新的 key；key 已存在時回傳 AlreadyExists 且不修改原值
func (sl *SkipList[K, V]) Insert(key K, value V) skiplist.InsertResult {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	update := make([]*Node[K, V], sl.maxLevel+1)
	next := sl.findUpdate(key, update)
	if next != nil && next.key == key {
		sl.log.Debugf(logging.NSList+"key: %v, exist", key)
		return skiplist.AlreadyExists
	}

	lvl := sl.randomLevel()
	if lvl > sl.level {
		for h := sl.level + 1; h <= lvl; h++ {
			update[h] = sl.head
		}
		sl.level = lvl
	}

	nd := newNode(key, value, lvl)
	for h := 0; h <= lvl; h++ {
		nd.forward[h] = update[h].forward[h]
		update[h].forward[h] = nd
	}
	sl.size++
	sl.log.Debugf(logging.NSList+"insert key: %v, value: %v, level: %d", key, value, lvl)
	return skiplist.Inserted
}

// Delete 刪除 key，不存在時不做任何事；回傳是否真的移除了節點
func (sl *SkipList[K, V]) Delete(key K) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	update := make([]*Node[K, V], sl.maxLevel+1)
	target := sl.findUpdate(key, update)
	if target == nil || target.key != key {
		return false
	}

	// 從最低層開始拆，某層不再指向 target 時更高層也不會有它
	for h := 0; h <= sl.level; h++ {
		if update[h].forward[h] != target {
			break
		}
		update[h].forward[h] = target.forward[h]
	}
	for sl.level > 0 && sl.head.forward[sl.level] == nil {
		sl.level--
	}
	sl.size--
	sl.log.Debugf(logging.NSList+"delete key: %v", key)
	return true
}

func (sl *SkipList[K, V]) find(key K) *Node[K, V] {
	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.forward[h] != nil && curr.forward[h].key < key {
			curr = curr.forward[h]
		}
	}
	curr = curr.forward[0]
	if curr != nil && curr.key == key {
		return curr
	}
	return nil
}

// Search 回傳 key 對應 value 的副本
func (sl *SkipList[K, V]) Search(key K) (V, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	if nd := sl.find(key); nd != nil {
		return nd.value, true
	}
	var zero V
	return zero, false
}

func (sl *SkipList[K, V]) Contains(key K) bool {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.find(key) != nil
}

func (sl *SkipList[K, V]) Size() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.size
}

// Level 目前的有效高度
func (sl *SkipList[K, V]) Level() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.level
}

func (sl *SkipList[K, V]) MaxLevel() int {
	return sl.maxLevel
}

// All 依 key 升冪走訪第 0 層
// 每一步只在取下一個節點時短暫持有讀鎖，yield 時不持鎖，
// 迴圈內可以呼叫同一個跳表的任何方法；並行寫入之後的元素是否出現取決於寫入時機
func (sl *SkipList[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		sl.mu.RLock()
		nd := sl.head.forward[0]
		if nd == nil {
			sl.mu.RUnlock()
			return
		}
		key, value := nd.key, nd.value
		sl.mu.RUnlock()

		for {
			if !yield(key, value) {
				return
			}
			sl.mu.RLock()
			nd = sl.after(key)
			if nd == nil {
				sl.mu.RUnlock()
				return
			}
			key, value = nd.key, nd.value
			sl.mu.RUnlock()
		}
	}
}

// after 回傳第一個 key 大於給定 key 的節點，呼叫端需持有鎖
func (sl *SkipList[K, V]) after(key K) *Node[K, V] {
	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.forward[h] != nil && curr.forward[h].key <= key {
			curr = curr.forward[h]
		}
	}
	return curr.forward[0]
}

func (sl *SkipList[K, V]) Keys() []K {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	keys := make([]K, 0, sl.size)
	for nd := sl.head.forward[0]; nd != nil; nd = nd.forward[0] {
		keys = append(keys, nd.key)
	}
	return keys
}

// Levels 回傳每層的 key 串列，Levels()[i] 為第 i 層
func (sl *SkipList[K, V]) Levels() [][]K {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	out := make([][]K, sl.level+1)
	for h := 0; h <= sl.level; h++ {
		for nd := sl.head.forward[h]; nd != nil; nd = nd.forward[h] {
			out[h] = append(out[h], nd.key)
		}
	}
	return out
}

// Display 以 "Level i: k:v;k:v;" 的格式輸出每一層
func (sl *SkipList[K, V]) Display(w io.Writer) error {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	var sb strings.Builder
	for h := 0; h <= sl.level; h++ {
		fmt.Fprintf(&sb, "Level %d: ", h)
		for nd := sl.head.forward[h]; nd != nil; nd = nd.forward[h] {
			fmt.Fprintf(&sb, "%v%s%v;", nd.key, Delimiter, nd.value)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// GetHead 回傳 head 哨兵節點，僅供分析工具在無並行寫入時使用
func (sl *SkipList[K, V]) GetHead() skiplist.Nodelike[K, V] {
	return sl.head
}

func (sl *SkipList[K, V]) GetMaxStats() (int, int) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.size, sl.level
}
