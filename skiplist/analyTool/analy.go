// Package analyTool 走訪 skiplist.Analyable 的連結結構做檢查與輸出。
// 所有函式都直接沿 GetHead() 的指標走訪而不取鎖，只能在沒有並行寫入時呼叫。
package analyTool

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/Hakuto4838/SkipListKV/skiplist"
	"github.com/olekukonko/tablewriter"
)

// FindStep 計算找到指定 key 的總步數和各層步數
// 走訪期間不可有並行寫入
func FindStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], key K) (step int, level []int) {
	cur := sl.GetHead()
	if cur == nil {
		return 0, []int{}
	}

	totalSteps := 0
	_, maxLevel := sl.GetMaxStats()
	stepsPerLevel := make([]int, maxLevel+1)

	// 從最高層開始搜尋
	for h := maxLevel; h >= 0; h-- {
		levelSteps := 0

		// 在當前層級水平移動
		for {
			nextNode := cur.GetNextAt(h)
			if nextNode == nil || nextNode.GetKey() >= key {
				break
			}
			cur = nextNode
			levelSteps++
		}

		// 如果找到目標 key，記錄步數並返回
		if nextNode := cur.GetNextAt(h); nextNode != nil && nextNode.GetKey() == key {
			levelSteps++ // 加上最後一步
			stepsPerLevel[h] = levelSteps
			totalSteps += levelSteps
			return totalSteps, stepsPerLevel
		}

		stepsPerLevel[h] = levelSteps
		totalSteps += levelSteps + 1 // 加上向下移動
	}

	// 如果沒找到，返回搜尋過程中的總步數
	return totalSteps, stepsPerLevel
}

// PrintSkipList 以對齊的方式打印前 maxNodes 個節點在各層的分佈
// 走訪期間不可有並行寫入
func PrintSkipList[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], maxLevel, maxNodes int) {
	_, actualMaxLevel := sl.GetMaxStats()
	maxLevel = min(maxLevel, actualMaxLevel)

	node := sl.GetHead()
	if node == nil {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}

	output := make([]string, maxLevel+1)
	for i := maxLevel; i >= 0; i-- {
		output[i] = fmt.Sprintf("level %d : head ->", i)
	}

	node = node.GetNextAt(0)
	for count := 0; node != nil && count < maxNodes; count++ {
		lv := node.GetLevel()
		for i := range output {
			if i <= lv {
				output[i] += fmt.Sprintf("%4v ->", node.GetKey())
			} else {
				output[i] += "      ->"
			}
		}
		node = node.GetNextAt(0)
	}

	for i := maxLevel; i >= 0; i-- {
		fmt.Fprintln(w, output[i])
	}
}

// PrintLink 逐層沿著 forward 指標打印連結結構
// 走訪期間不可有並行寫入
func PrintLink[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], maxLevel, maxNodes int) {
	head := sl.GetHead()
	if head == nil {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}
	_, level := sl.GetMaxStats()
	maxLevel = min(maxLevel, level)

	for i := maxLevel; i >= 0; i-- {
		var sb strings.Builder
		fmt.Fprintf(&sb, "level %d : head ->", i)
		node := head.GetNextAt(i)
		for count := 0; node != nil && count < maxNodes; count++ {
			fmt.Fprintf(&sb, " %v ->", node.GetKey())
			node = node.GetNextAt(i)
		}
		fmt.Fprintln(w, sb.String())
	}
}

// CheckStruct 檢查 skip list 的結構是否正確:
// 每個節點在其所有層都被前一個同高節點指向、各層 key 嚴格遞增、
// 第 0 層長度等於 size，且目前最高層不為空
// 走訪期間不可有並行寫入
func CheckStruct[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) error {
	size, maxLevel := sl.GetMaxStats()
	head := sl.GetHead()
	if head == nil {
		return nil
	}
	if maxLevel > 0 && head.GetNextAt(maxLevel) == nil {
		return fmt.Errorf("level %d is empty but still counted as current level", maxLevel)
	}

	// list[i] 為第 i 層目前走到的節點
	list := make([]skiplist.Nodelike[K, V], maxLevel+1)
	for i := range list {
		list[i] = head
	}

	count := 0
	var prev skiplist.Nodelike[K, V]
	for node := head.GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		count++
		if count > size {
			return fmt.Errorf("level 0 chain longer than size %d (cycle?)", size)
		}
		if prev != nil && prev.GetKey() >= node.GetKey() {
			return fmt.Errorf("keys out of order at level 0: %v >= %v", prev.GetKey(), node.GetKey())
		}
		nodelv := node.GetLevel()
		if nodelv > maxLevel {
			return fmt.Errorf("node %v has level %d above current level %d", node.GetKey(), nodelv, maxLevel)
		}
		for i := 0; i <= nodelv; i++ {
			if next := list[i].GetNextAt(i); next != node {
				return fmt.Errorf("level %d: node %v not linked from its predecessor", i, node.GetKey())
			}
			list[i] = node
		}
		prev = node
	}
	if count != size {
		return fmt.Errorf("level 0 has %d nodes, size is %d", count, size)
	}
	// 每層最後一個節點之後不可再有節點
	for i, last := range list {
		if next := last.GetNextAt(i); next != nil {
			return fmt.Errorf("level %d: stray link to %v", i, next.GetKey())
		}
	}
	return nil
}

// CountLevel 計算每層的節點數量
// 走訪期間不可有並行寫入
func CountLevel[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) []int {
	_, maxLevel := sl.GetMaxStats()
	levelCounts := make([]int, maxLevel+1)

	// 從第一個實際節點開始（跳過head）
	current := sl.GetHead().GetNextAt(0)
	for current != nil {
		// 該節點存在於 level 0 到 nodeLevel 的所有層
		for i := 0; i <= current.GetLevel() && i < len(levelCounts); i++ {
			levelCounts[i]++
		}
		current = current.GetNextAt(0)
	}
	return levelCounts
}

// RenderLevels 以表格輸出每層節點數與前 maxKeys 個 key
// 走訪期間不可有並行寫入
func RenderLevels[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], maxKeys int) {
	counts := CountLevel(sl)
	head := sl.GetHead()

	rows := make([][]string, 0, len(counts))
	for i := len(counts) - 1; i >= 0; i-- {
		keys := make([]string, 0, maxKeys)
		node := head.GetNextAt(i)
		for ; node != nil && len(keys) < maxKeys; node = node.GetNextAt(i) {
			keys = append(keys, fmt.Sprintf("%v", node.GetKey()))
		}
		if node != nil {
			keys = append(keys, "...")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", counts[i]),
			strings.Join(keys, " "),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes", "Keys"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
