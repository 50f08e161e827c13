// Package snapshot 把跳表內容存成快照檔案，或從快照檔案載回。
//
// 檔案內容為每行一筆的 "key:value" 文字 (可選擇以 snappy/zstd/lz4 串流壓縮)，
// 依 key 升冪排列。Stats.Digest 為未壓縮文字的 xxh3-64，
// 同一份資料不論壓縮方式為何都得到相同的值。
package snapshot

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Hakuto4838/SkipListKV/internal/logging"
	"github.com/Hakuto4838/SkipListKV/skiplist/kvlist"
	"github.com/zeebo/xxh3"
)

type Dumper[K cmp.Ordered, V any] interface {
	Dump(w io.Writer, codec kvlist.Codec[K, V]) (int, error)
}

type Loader[K cmp.Ordered, V any] interface {
	Load(r io.Reader, codec kvlist.Codec[K, V]) (kvlist.LoadStats, error)
}

// Stats 一次存檔或載入的統計
type Stats struct {
	Records   int    // Save: 寫出筆數；Restore: 讀到的行數 (含略過的)
	Bytes     int64  // 未壓縮文字的位元組數
	FileBytes int64  // 檔案實際大小
	Digest    uint64 // 未壓縮文字的 xxh3-64
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Save 將 list 的內容寫入 cfg.Path()
// 先寫入同目錄的暫存檔再 rename，寫入失敗時不會破壞舊的快照
func Save[K cmp.Ordered, V any](list Dumper[K, V], codec kvlist.Codec[K, V], cfg Config, logger logging.Logger) (Stats, error) {
	logger = logging.OrDefault(logger)
	var stats Stats
	if err := cfg.validate(); err != nil {
		return stats, err
	}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return stats, fmt.Errorf("create snapshot dir %s: %w", cfg.Dir, err)
		}
	}

	path := cfg.Path()
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return stats, fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	var cw io.WriteCloser
	defer func() {
		if !committed {
			if cw != nil {
				cw.Close()
			}
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if cw, err = openWriter(cfg.Compression, tmp); err != nil {
		return stats, err
	}
	hasher := xxh3.New()
	counter := &countingWriter{}
	n, err := list.Dump(io.MultiWriter(cw, hasher, counter), codec)
	if err != nil {
		return stats, fmt.Errorf("dump to %s: %w", path, err)
	}
	err = cw.Close()
	cw = nil
	if err != nil {
		return stats, fmt.Errorf("finish %s stream: %w", cfg.Compression, err)
	}
	if err := tmp.Sync(); err != nil {
		return stats, fmt.Errorf("sync snapshot: %w", err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return stats, fmt.Errorf("stat snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return stats, fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return stats, fmt.Errorf("rename snapshot: %w", err)
	}
	committed = true

	stats = Stats{
		Records:   n,
		Bytes:     counter.n,
		FileBytes: info.Size(),
		Digest:    hasher.Sum64(),
	}
	logger.Infof(logging.NSSnapshot+"saved %d records to %s (%s, %d bytes, digest %016x)",
		stats.Records, path, cfg.Compression, stats.FileBytes, stats.Digest)
	return stats, nil
}

// Restore 讀取 cfg.Path() 並經由 Load 插入 list
// 檔案不存在時回傳的 error 滿足 errors.Is(err, os.ErrNotExist)
func Restore[K cmp.Ordered, V any](list Loader[K, V], codec kvlist.Codec[K, V], cfg Config, logger logging.Logger) (kvlist.LoadStats, Stats, error) {
	logger = logging.OrDefault(logger)
	var stats Stats
	if err := cfg.validate(); err != nil {
		return kvlist.LoadStats{}, stats, err
	}

	path := cfg.Path()
	f, err := os.Open(path)
	if err != nil {
		return kvlist.LoadStats{}, stats, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r, err := newReader(cfg.Compression, f)
	if err != nil {
		return kvlist.LoadStats{}, stats, err
	}
	defer r.Close()

	hasher := xxh3.New()
	counter := &countingWriter{}
	loaded, err := list.Load(io.TeeReader(r, io.MultiWriter(hasher, counter)), codec)
	if err != nil {
		return loaded, stats, fmt.Errorf("load %s: %w", path, err)
	}
	if info, err := f.Stat(); err == nil {
		stats.FileBytes = info.Size()
	}
	stats.Records = loaded.Inserted + loaded.Duplicates + loaded.Malformed
	stats.Bytes = counter.n
	stats.Digest = hasher.Sum64()

	if loaded.Malformed > 0 {
		logger.Warnf(logging.NSSnapshot+"%s: skipped %d malformed lines", path, loaded.Malformed)
	}
	logger.Infof(logging.NSSnapshot+"restored %d records from %s (%d duplicates, digest %016x)",
		loaded.Inserted, path, loaded.Duplicates, stats.Digest)
	return loaded, stats, nil
}

// Digest 計算 r 全部內容的 xxh3-64
func Digest(r io.Reader) (uint64, error) {
	hasher := xxh3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}

// FileDigest 解壓縮 cfg.Path() 後計算其 xxh3-64，與 Save 回傳的 Digest 可直接比較
func FileDigest(cfg Config) (uint64, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	f, err := os.Open(cfg.Path())
	if err != nil {
		return 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r, err := newReader(cfg.Compression, f)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return Digest(r)
}
