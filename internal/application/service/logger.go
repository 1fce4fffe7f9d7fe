package service

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Recorder receives counters about session activity.
type Recorder interface {
	RateLookup(result string)
	Transition(kind, from, to string)
	Save(kind, mode, result string)
}

type nopRecorder struct{}

func (nopRecorder) RateLookup(string)                {}
func (nopRecorder) Transition(string, string, string) {}
func (nopRecorder) Save(string, string, string)       {}
