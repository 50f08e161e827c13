package snapshot

import "errors"

var (
	// ErrUnsupportedCompression 未知的壓縮格式
	ErrUnsupportedCompression = errors.New("unsupported snapshot compression")

	// ErrEmptyPath Config 沒有指定檔名
	ErrEmptyPath = errors.New("snapshot path is empty")
)
