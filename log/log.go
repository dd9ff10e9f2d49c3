// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the leveled, structured logger used throughout the
// simulation, in the style of the call sites this repository was grown
// from (log.Info("msg", "key", val, ...)). It is a small self-contained
// logger (it does not use log/slog) with a colorized terminal handler.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity, ordered from most to least severe.
type Level int

const (
	LevelCrit Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelCrit:
		return "CRIT"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

var levelColor = map[Level]*color.Color{
	LevelCrit:  color.New(color.FgWhite, color.BgRed, color.Bold),
	LevelError: color.New(color.FgRed, color.Bold),
	LevelWarn:  color.New(color.FgYellow),
	LevelInfo:  color.New(color.FgGreen),
	LevelDebug: color.New(color.FgCyan),
	LevelTrace: color.New(color.FgMagenta),
}

// record is a single log event.
type record struct {
	time      time.Time
	lvl       Level
	msg       string
	ctx       []any
	frame     stack.Call // only valid when hasCaller is true
	hasCaller bool
}

// Handler formats and writes records. SetHandler installs a custom one;
// the package default is a terminalHandler over os.Stdout.
type Handler interface {
	Log(r record) error
}

var (
	mu         sync.RWMutex
	minLevel   = LevelInfo
	rootHandle Handler = newTerminalHandler(os.Stdout)
)

// SetLevel changes the minimum level that reaches the installed handler.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetHandler installs a custom output handler, replacing the default
// terminal handler.
func SetHandler(h Handler) {
	mu.Lock()
	defer mu.Unlock()
	rootHandle = h
}

func currentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return minLevel
}

func currentHandler() Handler {
	mu.RLock()
	defer mu.RUnlock()
	return rootHandle
}

// Logger is a named logger carrying a fixed set of key/value context,
// attached to every record it emits (the teacher call sites' idiom of
// log.New("component", name) followed by lg.Info("msg", "k", v)).
type Logger struct {
	ctx []any
}

// New creates a Logger, merging ctx pairs ("key", value, "key", value...)
// into every subsequent record.
func New(ctx ...any) *Logger {
	return &Logger{ctx: append([]any(nil), ctx...)}
}

// With returns a derived Logger with additional context appended.
func (l *Logger) With(ctx ...any) *Logger {
	merged := append(append([]any(nil), l.ctx...), ctx...)
	return &Logger{ctx: merged}
}

func (l *Logger) log(lvl Level, msg string, ctx []any, withCaller bool) {
	if lvl > currentLevel() {
		return
	}
	r := record{
		time: time.Now(),
		lvl:  lvl,
		msg:  msg,
		ctx:  append(append([]any(nil), l.ctx...), ctx...),
	}
	if withCaller {
		// frames[0] is log() and frames[1] the Logger level method, so
		// frames[2] is its caller; the package-level functions go through
		// root and add one more frame.
		skip := 2
		if l == root {
			skip = 3
		}
		frames := stack.Trace().TrimRuntime()
		if len(frames) > skip {
			r.frame = frames[skip]
			r.hasCaller = true
		}
	}
	_ = currentHandler().Log(r)
}

func (l *Logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx, false) }
func (l *Logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx, false) }
func (l *Logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx, false) }
func (l *Logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx, false) }
func (l *Logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx, true) }

// Crit logs at the highest severity with caller information and then
// terminates the process, matching the historical geth-family log.Crit
// contract ("this process cannot continue").
func (l *Logger) Crit(msg string, ctx ...any) {
	l.log(LevelCrit, msg, ctx, true)
	os.Exit(1)
}

var root = New()

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }

// terminalHandler formats records for a terminal, colorizing the level
// prefix when the underlying writer is a real TTY.
type terminalHandler struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func newTerminalHandler(f *os.File) *terminalHandler {
	colorize := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &terminalHandler{
		out:      colorable.NewColorable(f),
		colorize: colorize,
	}
}

func (h *terminalHandler) Log(r record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	lvl := r.lvl.String()
	if h.colorize {
		if c, ok := levelColor[r.lvl]; ok {
			lvl = c.Sprint(r.lvl.String())
		}
	}

	var b strings.Builder
	b.WriteString(r.time.Format("2006-01-02T15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(lvl)
	b.WriteByte(' ')
	b.WriteString(r.msg)
	for i := 0; i+1 < len(r.ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", r.ctx[i], r.ctx[i+1])
	}
	if r.hasCaller {
		fmt.Fprintf(&b, " caller=%s:%d", r.frame.Frame().File, r.frame.Frame().Line)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.out, b.String())
	return err
}
