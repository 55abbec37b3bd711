package log

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoggerFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := NewMockLogger()
	require.NoError(t, logger.Start(ctx))

	feed, cancelFeed := logger.Subscribe()
	defer cancelFeed()

	go logger.Info().
		Src("generate").
		Compilation("comp1").
		Msgf("encoded %v clips", 3)

	select {
	case entry := <-feed:
		require.Equal(t, LevelInfo, entry.Level)
		require.Equal(t, "generate", entry.Src)
		require.Equal(t, "comp1", entry.Compilation)
		require.Equal(t, "encoded 3 clips", entry.Msg)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestLoggerUnsubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := NewMockLogger()
	require.NoError(t, logger.Start(ctx))

	_, cancelFeed := logger.Subscribe()
	cancelFeed()

	// Events after unsubscribe are dropped, not blocked on.
	done := make(chan struct{})
	go func() {
		logger.Warn().Src("app").Msg("test")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestNewLoggerCreatesDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	wg := &sync.WaitGroup{}

	logger, err := NewLogger(dbPath, wg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.FileExists(t, dbPath)

	// Re-opening an existing database succeeds.
	_, err = NewLogger(dbPath, wg)
	require.NoError(t, err)
}

func TestFFmpegLevel(t *testing.T) {
	require.Equal(t, LevelError, FFmpegLevel("error"))
	require.Equal(t, LevelWarning, FFmpegLevel("warning"))
	require.Equal(t, LevelInfo, FFmpegLevel("info"))
	require.Equal(t, LevelDebug, FFmpegLevel("debug"))
}
