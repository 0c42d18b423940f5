// Package logging provides the structured logger used across the decision
// core. Entries carry a component tag and key/value fields and are written
// as JSON or plain text.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity levels.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. Unknown strings map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Entry is one structured log record.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Config holds logger configuration.
type Config struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // "stdout", "stderr", or file path
	Component  string `json:"component"`
	JSONFormat bool   `json:"json_format"`
}

// Logger is a structured logger. Methods accept a message followed by
// alternating key/value pairs.
type Logger struct {
	mu         *sync.Mutex
	output     io.Writer
	level      Level
	component  string
	fields     map[string]interface{}
	jsonFormat bool
}

// New creates a logger from the given configuration.
func New(cfg *Config) *Logger {
	var output io.Writer = os.Stdout
	switch cfg.Output {
	case "", "stdout":
	case "stderr":
		output = os.Stderr
	default:
		if file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			output = file
		}
	}
	return &Logger{
		mu:         &sync.Mutex{},
		output:     output,
		level:      ParseLevel(cfg.Level),
		component:  cfg.Component,
		fields:     map[string]interface{}{},
		jsonFormat: cfg.JSONFormat,
	}
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide fallback logger.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(&Config{Level: "INFO", Component: "core", JSONFormat: true})
	})
	return defaultLogger
}

func (l *Logger) clone() *Logger {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	c := *l
	c.fields = fields
	return &c
}

// WithComponent returns a logger tagged with the given component.
func (l *Logger) WithComponent(component string) *Logger {
	c := l.clone()
	c.component = component
	return c
}

// WithField returns a logger carrying an additional field on every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithError returns a logger carrying an error field.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) log(level Level, msg string, kv ...interface{}) {
	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Component: l.component,
	}
	if len(l.fields) > 0 || len(kv) > 0 {
		entry.Fields = make(map[string]interface{}, len(l.fields)+len(kv)/2)
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		if err, isErr := kv[i+1].(error); isErr && err != nil {
			entry.Fields[key] = err.Error()
			continue
		}
		entry.Fields[key] = kv[i+1]
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.jsonFormat {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(data))
		return
	}

	var b strings.Builder
	b.WriteString(entry.Timestamp[:19])
	fmt.Fprintf(&b, " [%-5s]", entry.Level)
	if entry.Component != "" {
		fmt.Fprintf(&b, " [%s]", entry.Component)
	}
	b.WriteString(" ")
	b.WriteString(entry.Message)
	if len(entry.Fields) > 0 {
		b.WriteString(" |")
		for k, v := range entry.Fields {
			fmt.Fprintf(&b, " %s=%v", k, v)
		}
	}
	fmt.Fprintln(l.output, b.String())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(DEBUG, msg, kv...) }

// Info logs an info message.
func (l *Logger) Info(msg string, kv ...interface{}) { l.log(INFO, msg, kv...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...interface{}) { l.log(WARN, msg, kv...) }

// Error logs an error message.
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(ERROR, msg, kv...) }

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.log(FATAL, msg, kv...)
	os.Exit(1)
}
