// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package log

// API inspired by zerolog https://github.com/rs/zerolog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level defines log level.
type Level uint8

// Logging constants, matching ffmpeg.
const (
	LevelError   Level = 16
	LevelWarning Level = 24
	LevelInfo    Level = 32
	LevelDebug   Level = 48
)

// FFmpegLevel maps an ffmpeg loglevel string to a Level.
func FFmpegLevel(loglevel string) Level {
	switch loglevel {
	case "quiet", "fatal", "error":
		return LevelError
	case "warning":
		return LevelWarning
	case "info":
		return LevelInfo
	default:
		return LevelDebug
	}
}

// UnixMillisecond .
type UnixMillisecond uint64

// Event defines log event.
type Event struct {
	level       Level
	time        UnixMillisecond
	src         string // Source.
	compilation string // Source compilation id.

	logger *Logger
}

// Log defines log entry.
type Log struct {
	Level       Level
	Time        UnixMillisecond
	Msg         string
	Src         string
	Compilation string
}

// Src sets event source.
func (e *Event) Src(source string) *Event {
	e.src = source
	return e
}

// Compilation sets the event compilation id.
func (e *Event) Compilation(id string) *Event {
	e.compilation = id
	return e
}

// Time sets event time.
func (e *Event) Time(t time.Time) *Event {
	e.time = UnixMillisecond(t.UnixMilli())
	return e
}

// Msg sends the *Event with msg added as the message field.
func (e *Event) Msg(msg string) {
	log := Log{
		Time:        e.time,
		Level:       e.level,
		Msg:         msg,
		Src:         e.src,
		Compilation: e.compilation,
	}

	e.logger.feed <- log
}

// Msgf sends the event with formatted msg added as the message field.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.Msg(fmt.Sprintf(format, v...))
}

// Feed defines feed of logs.
type Feed <-chan Log
type logFeed chan Log

// Logger logs.
type Logger struct {
	feed  logFeed      // feed of logs.
	sub   chan logFeed // subscribe requests.
	unsub chan logFeed // unsubscribe requests.

	wg     *sync.WaitGroup
	dbPath string
}

// NewLogger starts and returns Logger.
func NewLogger(dbPath string, wg *sync.WaitGroup) (*Logger, error) {
	if err := checkDB(dbPath); err != nil {
		return nil, err
	}

	return &Logger{
		feed:  make(logFeed),
		sub:   make(chan logFeed),
		unsub: make(chan logFeed),

		wg:     wg,
		dbPath: dbPath,
	}, nil
}

// NewMockLogger used for testing.
func NewMockLogger() *Logger {
	return &Logger{
		feed:  make(logFeed),
		sub:   make(chan logFeed),
		unsub: make(chan logFeed),
		wg:    &sync.WaitGroup{},
	}
}

// Start logger.
func (l *Logger) Start(ctx context.Context) error {
	l.wg.Add(1)
	go func() {
		subs := map[logFeed]struct{}{}
		for {
			select {
			case <-ctx.Done():
				l.wg.Done()
				return

			case ch := <-l.sub:
				subs[ch] = struct{}{}

			case ch := <-l.unsub:
				close(ch)
				delete(subs, ch)

			case msg := <-l.feed:
				for ch := range subs {
					ch <- msg
				}
			}
		}
	}()
	return nil
}

// CancelFunc cancels log feed subscription.
type CancelFunc func()

// Subscribe returns a new chan with log feed and a CancelFunc.
func (l *Logger) Subscribe() (<-chan Log, CancelFunc) {
	feed := make(logFeed)
	l.sub <- feed

	cancel := func() {
		l.unSubscribe(feed)
	}
	return feed, cancel
}

func (l *Logger) unSubscribe(feed logFeed) {
	// Read feed until unsub request is accepted.
	for {
		select {
		case l.unsub <- feed:
			return
		case <-feed:
		}
	}
}

// LogToStdout prints log feed to Stdout.
func (l *Logger) LogToStdout(ctx context.Context) {
	feed, cancel := l.Subscribe()
	defer cancel()
	for {
		select {
		case log := <-feed:
			printLog(log)
		case <-ctx.Done():
			return
		}
	}
}

func printLog(log Log) {
	var output string

	switch log.Level {
	case LevelError:
		output += "[ERROR] "
	case LevelWarning:
		output += "[WARNING] "
	case LevelInfo:
		output += "[INFO] "
	case LevelDebug:
		output += "[DEBUG] "
	}

	if log.Compilation != "" {
		output += log.Compilation + ": "
	}
	if log.Src != "" {
		output += strings.Title(log.Src) + ": " //nolint:staticcheck
	}

	output += log.Msg
	fmt.Println(output)
}

// Error starts a new message with error level.
// You must call Msg on the returned event in order to send the event.
func (l *Logger) Error() *Event {
	return l.newEvent(LevelError)
}

// Warn starts a new message with warn level.
func (l *Logger) Warn() *Event {
	return l.newEvent(LevelWarning)
}

// Info starts a new message with info level.
func (l *Logger) Info() *Event {
	return l.newEvent(LevelInfo)
}

// Debug starts a new message with debug level.
func (l *Logger) Debug() *Event {
	return l.newEvent(LevelDebug)
}

// Level starts a new message with the given level.
func (l *Logger) Level(level Level) *Event {
	return l.newEvent(level)
}

func (l *Logger) newEvent(level Level) *Event {
	return &Event{
		level:  level,
		time:   UnixMillisecond(time.Now().UnixMilli()),
		logger: l,
	}
}
