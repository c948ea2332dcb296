package game

// Logger is the logging surface the game packages need. The colored
// component loggers built in main satisfy it.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string)    {}
func (NopLogger) Warning(string) {}
func (NopLogger) Error(string)   {}
