package testutil

import "sync"

// RecordingLogger captures messages by level for assertions.
type RecordingLogger struct {
	mu       sync.Mutex
	Debugs   []string
	Infos    []string
	Warnings []string
	Errors   []string
}

func (l *RecordingLogger) LogTrace(string) {}

func (l *RecordingLogger) LogDebug(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, m)
}

func (l *RecordingLogger) LogInfo(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, m)
}

func (l *RecordingLogger) LogWarn(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warnings = append(l.Warnings, m)
}

func (l *RecordingLogger) LogError(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, m)
}
