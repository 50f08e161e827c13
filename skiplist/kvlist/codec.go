package kvlist

import (
	"cmp"
	"strconv"
)

// Codec 負責 key/value 與快照文字之間的轉換
// 格式化結果不可包含 Delimiter，否則重新載入時會解析錯誤
type Codec[K cmp.Ordered, V any] interface {
	FormatKey(key K) string
	ParseKey(s string) (K, error)
	FormatValue(value V) string
	ParseValue(s string) (V, error)
}

// IntStringCodec int key、string value
type IntStringCodec struct{}

func (IntStringCodec) FormatKey(key int) string { return strconv.Itoa(key) }
func (IntStringCodec) ParseKey(s string) (int, error) { return strconv.Atoi(s) }
func (IntStringCodec) FormatValue(value string) string { return value }
func (IntStringCodec) ParseValue(s string) (string, error) { return s, nil }

// StringCodec string key、string value
type StringCodec struct{}

func (StringCodec) FormatKey(key string) string { return key }
func (StringCodec) ParseKey(s string) (string, error) { return s, nil }
func (StringCodec) FormatValue(value string) string { return value }
func (StringCodec) ParseValue(s string) (string, error) { return s, nil }

// Int64Float64Codec int64 key、float64 value
type Int64Float64Codec struct{}

func (Int64Float64Codec) FormatKey(key int64) string { return strconv.FormatInt(key, 10) }
func (Int64Float64Codec) ParseKey(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
func (Int64Float64Codec) FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
func (Int64Float64Codec) ParseValue(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
