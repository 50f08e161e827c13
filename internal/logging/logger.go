// Package logging 提供 skiplist 與其周邊工具共用的分級日誌介面。
//
// 輸出格式: YYYY/MM/DD HH:MM:SS LEVEL [component] message
//
// 例: 2026/10/18 18:45:13 DEBUG [skiplist] insert key=3
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
)

// Level 日誌等級
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 將 "error"、"warn"、"info"、"debug" (不分大小寫) 轉為 Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level: %q", s)
	}
}

// Logger 日誌介面，實作必須可被多個 goroutine 同時呼叫
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// DefaultLogger 以標準 log.Logger 輸出，建立後等級不可變更
type DefaultLogger struct {
	logger *log.Logger
	level  Level
}

// NewDefaultLogger 建立輸出到 stderr 的 logger
func NewDefaultLogger(level Level) *DefaultLogger {
	return NewLogger(os.Stderr, level)
}

// NewLogger 建立輸出到 w 的 logger
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

func (l *DefaultLogger) Level() Level {
	return l.level
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.output(LevelError, format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.output(LevelWarn, format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.output(LevelInfo, format, args...)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.output(LevelDebug, format, args...)
}

func (l *DefaultLogger) output(level Level, format string, args ...any) {
	if l.level < level {
		return
	}
	_ = l.logger.Output(3, level.String()+" "+fmt.Sprintf(format, args...))
}

// 各元件的訊息前綴
const (
	NSList     = "[skiplist] "
	NSSnapshot = "[snapshot] "
	NSStress   = "[stress] "
	NSDemo     = "[demo] "
)

// IsNil 判斷 logger 是否為 nil 或 typed-nil
func IsNil(l Logger) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// OrDefault 傳入的 logger 無效時回傳 Discard
func OrDefault(l Logger) Logger {
	if IsNil(l) {
		return Discard
	}
	return l
}
