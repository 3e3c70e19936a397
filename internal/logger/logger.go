package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger writes tagged, colored lines to stdout and mirrors everything to a
// plain-text log file. Tags group lines by subsystem (DATABASE, KAFKA, API,
// SESSION, ...) so a busy counter shift is still scannable in the terminal.
type Logger struct {
	file *os.File

	infoColor    *color.Color
	warnColor    *color.Color
	errorColor   *color.Color
	debugColor   *color.Color
	processColor *color.Color
}

func NewLogger() *Logger {
	file, err := os.OpenFile("boliche-os.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		// Still usable, terminal only.
		file = nil
	}

	return &Logger{
		file:         file,
		infoColor:    color.New(color.FgCyan),
		warnColor:    color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed, color.Bold),
		debugColor:   color.New(color.FgHiBlack),
		processColor: color.New(color.FgGreen, color.Bold),
	}
}

func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}

func (l *Logger) write(level, tag, msg string, c *color.Color) {
	line := fmt.Sprintf("%s [%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, tag, msg)
	c.Println(line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *Logger) Info(tag, msg string)  { l.write("INFO", tag, msg, l.infoColor) }
func (l *Logger) Warn(tag, msg string)  { l.write("WARN", tag, msg, l.warnColor) }
func (l *Logger) Error(tag, msg string) { l.write("ERROR", tag, msg, l.errorColor) }
func (l *Logger) Debug(tag, msg string) { l.write("DEBUG", tag, msg, l.debugColor) }

func (l *Logger) Fatal(tag, msg string) {
	l.write("FATAL", tag, msg, l.errorColor)
	l.Close()
	os.Exit(1)
}

// LogProcess marks lifecycle milestones (startup, component init, shutdown).
func (l *Logger) LogProcess(stage, msg string) {
	l.write("PROC", stage, msg, l.processColor)
}

func (l *Logger) LogDatabase(op, table, msg string) {
	l.write("INFO", "DATABASE", fmt.Sprintf("[%s:%s] %s", op, table, msg), l.infoColor)
}

func (l *Logger) LogKafka(op, topic, msg string) {
	l.write("INFO", "KAFKA", fmt.Sprintf("[%s:%s] %s", op, topic, msg), l.infoColor)
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.write("INFO", "API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration), l.infoColor)
}

func (l *Logger) LogSecurity(event, msg string) {
	l.write("WARN", "SECURITY", fmt.Sprintf("[%s] %s", event, msg), l.warnColor)
}

// LogSession tags session-ledger mutations with the session id.
func (l *Logger) LogSession(action, sessionID, msg string) {
	l.write("INFO", "SESSION", fmt.Sprintf("[%s:%s] %s", action, sessionID, msg), l.infoColor)
}

// LogLane tags lane state transitions with the lane id.
func (l *Logger) LogLane(action, laneID, msg string) {
	l.write("INFO", "LANE", fmt.Sprintf("[%s:%s] %s", action, laneID, msg), l.infoColor)
}
