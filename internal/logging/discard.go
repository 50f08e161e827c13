package logging

// DiscardLogger 丟棄所有訊息，用於 benchmark 或不需要日誌的場合
type DiscardLogger struct{}

// Discard 為共用的 DiscardLogger
var Discard Logger = &DiscardLogger{}

func (l *DiscardLogger) Errorf(format string, args ...any) {}

func (l *DiscardLogger) Warnf(format string, args ...any) {}

func (l *DiscardLogger) Infof(format string, args ...any) {}

func (l *DiscardLogger) Debugf(format string, args ...any) {}
