package kvlist

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist"
)

// Delimiter 快照每行 key 與 value 的分隔字元
// 不做跳脫：key 含 ':' 的資料無法正確還原，value 只在第一個 ':' 後切開
const Delimiter = ":"

// ErrMalformedLine 快照中缺少分隔字元、或 key/value 為空、或無法解析的行
var ErrMalformedLine = errors.New("malformed snapshot line")

// LoadStats Load 的統計結果
type LoadStats struct {
	Inserted   int
	Duplicates int // 已存在而被 Insert 拒絕的行
	Malformed  int // 被略過的格式錯誤行
}

// Dump 依 key 升冪寫出 "key:value" 每筆一行，回傳寫出的筆數
func (sl *SkipList[K, V]) Dump(w io.Writer, codec Codec[K, V]) (int, error) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	bw := bufio.NewWriter(w)
	count := 0
	for nd := sl.head.forward[0]; nd != nil; nd = nd.forward[0] {
		line := codec.FormatKey(nd.key) + Delimiter + codec.FormatValue(nd.value) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return count, fmt.Errorf("dump key %v: %w", nd.key, err)
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("dump flush: %w", err)
	}
	sl.log.Debugf(logging.NSList+"dump %d records", count)
	return count, nil
}

// Load 逐行讀入並經由 Insert 加入，重複的 key 不會覆寫原值
// 格式錯誤的行會被略過並記錄，只有讀取錯誤才會回傳 error
func (sl *SkipList[K, V]) Load(r io.Reader, codec Codec[K, V]) (LoadStats, error) {
	var stats LoadStats
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return stats, fmt.Errorf("load line %d: %w", lineNo+1, readErr)
		}
		if len(line) > 0 {
			lineNo++
			key, value, err := parseLine(line, codec)
			switch {
			case err != nil:
				stats.Malformed++
				sl.log.Warnf(logging.NSList+"skip line %d: %v", lineNo, err)
			case sl.Insert(key, value) == skiplist.AlreadyExists:
				stats.Duplicates++
			default:
				stats.Inserted++
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	sl.log.Debugf(logging.NSList+"load %d records, %d duplicates, %d malformed",
		stats.Inserted, stats.Duplicates, stats.Malformed)
	return stats, nil
}

func parseLine[K cmp.Ordered, V any](line string, codec Codec[K, V]) (K, V, error) {
	var key K
	var value V

	line = strings.TrimRight(line, "\r\n")
	ks, vs, ok := strings.Cut(line, Delimiter)
	if !ok || ks == "" || vs == "" {
		return key, value, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	key, err := codec.ParseKey(ks)
	if err != nil {
		return key, value, fmt.Errorf("%w: key %q: %v", ErrMalformedLine, ks, err)
	}
	value, err = codec.ParseValue(vs)
	if err != nil {
		return key, value, fmt.Errorf("%w: value %q: %v", ErrMalformedLine, vs, err)
	}
	return key, value, nil
}
