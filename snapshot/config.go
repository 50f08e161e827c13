package snapshot

import "path/filepath"

const (
	DefaultDir  = "store"
	DefaultFile = "dumpFile"
)

// Config 快照檔案位置與壓縮方式
type Config struct {
	Dir         string // 快照目錄，相對於工作目錄
	File        string // 檔名
	Compression Compression
}

// DefaultConfig 返回默認配置: store/dumpFile，不壓縮
func DefaultConfig() Config {
	return Config{
		Dir:         DefaultDir,
		File:        DefaultFile,
		Compression: None,
	}
}

// Path 快照檔案的完整路徑
func (c Config) Path() string {
	return filepath.Join(c.Dir, c.File)
}

func (c Config) validate() error {
	if c.File == "" {
		return ErrEmptyPath
	}
	if !c.Compression.IsSupported() {
		return ErrUnsupportedCompression
	}
	return nil
}
