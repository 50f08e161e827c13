package analyTool

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Hakuto4838/SkipListKV/skiplist"
	"github.com/Hakuto4838/SkipListKV/skiplist/kvlist"
)

func buildList(n int) *kvlist.SkipList[int, string] {
	sl := kvlist.NewWithOptions[int, string](kvlist.Options{MaxLevel: 12, Seed: 42})
	for i := 0; i < n; i++ {
		sl.Insert(i*3, "v")
	}
	return sl
}

// brokenList 讓 CheckStruct 能看到錯誤的結構
type brokenList struct {
	head *fakeNode
	size int
}

type fakeNode struct {
	key  int
	next []*fakeNode
}

func (n *fakeNode) GetKey() int { return n.key }
func (n *fakeNode) GetValue() string { return "" }
func (n *fakeNode) GetLevel() int { return len(n.next) - 1 }
func (n *fakeNode) GetNextAt(level int) skiplist.Nodelike[int, string] {
	if level < 0 || level >= len(n.next) || n.next[level] == nil {
		return nil
	}
	return n.next[level]
}

func (b *brokenList) GetHead() skiplist.Nodelike[int, string] { return b.head }
func (b *brokenList) GetMaxStats() (int, int) { return b.size, 0 }

func TestCheckStructValid(t *testing.T) {
	for _, n := range []int{0, 1, 10, 1000} {
		if err := CheckStruct[int, string](buildList(n)); err != nil {
			t.Errorf("n=%d: CheckStruct = %v", n, err)
		}
	}
}

func TestCheckStructAfterDeletes(t *testing.T) {
	sl := buildList(500)
	for i := 0; i < 500; i += 2 {
		sl.Delete(i * 3)
	}
	if err := CheckStruct[int, string](sl); err != nil {
		t.Errorf("CheckStruct = %v", err)
	}
}

func TestCheckStructDetectsDisorder(t *testing.T) {
	b := &fakeNode{key: 5, next: make([]*fakeNode, 1)}
	a := &fakeNode{key: 7, next: []*fakeNode{b}}
	head := &fakeNode{key: 0, next: []*fakeNode{a}}
	if err := CheckStruct[int, string](&brokenList{head: head, size: 2}); err == nil {
		t.Error("CheckStruct accepted unordered keys")
	}
}

func TestCheckStructDetectsSizeMismatch(t *testing.T) {
	a := &fakeNode{key: 1, next: make([]*fakeNode, 1)}
	head := &fakeNode{key: 0, next: []*fakeNode{a}}
	if err := CheckStruct[int, string](&brokenList{head: head, size: 3}); err == nil {
		t.Error("CheckStruct accepted size mismatch")
	}
}

func TestCountLevel(t *testing.T) {
	sl := buildList(2000)
	counts := CountLevel[int, string](sl)
	if counts[0] != 2000 {
		t.Errorf("level 0 count = %d, want 2000", counts[0])
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			t.Errorf("level %d has %d nodes, more than level %d (%d)", i, counts[i], i-1, counts[i-1])
		}
	}
	// 每個節點至少在第 1 層
	if counts[1] != 2000 {
		t.Errorf("level 1 count = %d, want 2000", counts[1])
	}
	t.Logf("level counts: %v", counts)
}

func TestFindStep(t *testing.T) {
	sl := buildList(300)
	steps, perLevel := FindStep[int, string](sl, 150)
	if steps <= 0 {
		t.Errorf("FindStep steps = %d", steps)
	}
	_, level := sl.GetMaxStats()
	if len(perLevel) != level+1 {
		t.Errorf("perLevel len = %d, want %d", len(perLevel), level+1)
	}
	missSteps, _ := FindStep[int, string](sl, 151)
	if missSteps <= 0 {
		t.Errorf("FindStep miss steps = %d", missSteps)
	}
}

func TestPrinters(t *testing.T) {
	sl := buildList(5)

	var buf bytes.Buffer
	PrintSkipList[int, string](&buf, sl, 8, 3)
	if !strings.Contains(buf.String(), "level 0 : head ->") {
		t.Errorf("PrintSkipList output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "  9 ->") {
		t.Errorf("PrintSkipList printed more than 3 nodes:\n%s", buf.String())
	}

	buf.Reset()
	PrintLink[int, string](&buf, sl, 8, 10)
	if !strings.Contains(buf.String(), "level 0 : head -> 0 -> 3 -> 6 -> 9 -> 12 ->") {
		t.Errorf("PrintLink output:\n%s", buf.String())
	}

	buf.Reset()
	RenderLevels[int, string](&buf, sl, 2)
	out := buf.String()
	if !strings.Contains(out, "LEVEL") || !strings.Contains(out, "0 3 ...") {
		t.Errorf("RenderLevels output:\n%s", out)
	}
}

// 並行寫入結束 (WaitGroup 會合) 之後，不取鎖的走訪必須看到完整一致的結構
func TestWalkersAfterConcurrentWritersJoin(t *testing.T) {
	sl := kvlist.NewWithOptions[int, string](kvlist.Options{MaxLevel: 12, Seed: 7})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := w*500 + i
				sl.Insert(k, "v")
				if k%3 == 0 {
					sl.Delete(k)
				}
			}
		}(w)
	}
	wg.Wait()

	if err := CheckStruct[int, string](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
	size, _ := sl.GetMaxStats()
	if counts := CountLevel[int, string](sl); counts[0] != size || size != 4000-1334 {
		t.Errorf("CountLevel[0] = %d, size = %d, want %d", counts[0], size, 4000-1334)
	}
	var buf bytes.Buffer
	RenderLevels[int, string](&buf, sl, 4)
	if !strings.Contains(buf.String(), "1 2 4 5") {
		t.Errorf("RenderLevels output:\n%s", buf.String())
	}
}
