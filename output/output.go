// Package output collects the warnings and errors produced while processing
// a descriptor. Processing never aborts on the first problem: each stage
// reports into an Adder and the caller decides afterwards whether the run
// failed.
package output

import "go.uber.org/zap"

// Level classifies a reported message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is one reported problem. Title identifies the unit or rule, the
// message carries the detail.
type Message struct {
	Title   string
	Message string
	Level   Level
}

// Adder receives messages from processing stages.
type Adder interface {
	Info(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

// Buffered is an Adder that accumulates messages in order.
type Buffered struct {
	Messages []Message
}

func (b *Buffered) add(level Level, title, message string) {
	b.Messages = append(b.Messages, Message{Title: title, Message: message, Level: level})
}

func (b *Buffered) Info(title, message string)    { b.add(LevelInfo, title, message) }
func (b *Buffered) Warning(title, message string) { b.add(LevelWarning, title, message) }
func (b *Buffered) Error(title, message string)   { b.add(LevelError, title, message) }

// HasErrors reports whether any error-level message was added.
func (b *Buffered) HasErrors() bool {
	for _, m := range b.Messages {
		if m.Level == LevelError {
			return true
		}
	}
	return false
}

// Console is an Adder that logs each message as it arrives.
type Console struct {
	Log *zap.Logger
}

func (c *Console) Info(title, message string) {
	c.Log.Info(message, zap.String("unit", title))
}

func (c *Console) Warning(title, message string) {
	c.Log.Warn(message, zap.String("unit", title))
}

func (c *Console) Error(title, message string) {
	c.Log.Error(message, zap.String("unit", title))
}

// Tee fans messages out to several adders.
type Tee []Adder

func (t Tee) Info(title, message string) {
	for _, a := range t {
		a.Info(title, message)
	}
}

func (t Tee) Warning(title, message string) {
	for _, a := range t {
		a.Warning(title, message)
	}
}

func (t Tee) Error(title, message string) {
	for _, a := range t {
		a.Error(title, message)
	}
}
