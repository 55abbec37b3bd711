package ffmock

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"vidmash/pkg/ffmpeg"
)

// MockProcessConfig ProcessMocker config.
type MockProcessConfig struct {
	ReturnErr bool
	Sleep     time.Duration
	OnStart   func(*exec.Cmd)
}

// NewProcessMocker creates process mocker from config.
func NewProcessMocker(c MockProcessConfig) ffmpeg.NewProcessFunc {
	return func(cmd *exec.Cmd) ffmpeg.Process {
		return mockProcess{
			c:   c,
			cmd: cmd,
		}
	}
}

type mockProcess struct {
	c   MockProcessConfig
	cmd *exec.Cmd
}

func (m mockProcess) Start(ctx context.Context) error {
	if m.c.OnStart != nil {
		m.c.OnStart(m.cmd)
	}
	if m.c.Sleep != 0 {
		select {
		case <-time.After(m.c.Sleep):
		case <-ctx.Done():
		}
	}
	if m.c.ReturnErr {
		return &ffmpeg.CommandError{
			Cmd:    m.cmd.Path,
			Output: "mock output",
			Err:    errors.New("mock"),
		}
	}
	return nil
}

func (m mockProcess) SetTimeout(time.Duration) {}
func (m mockProcess) SetPrefix(string)         {}
func (m mockProcess) SetLogFunc(func(string))  {}

// NewProcess sleeps for 15ms before returning.
var NewProcess = NewProcessMocker(MockProcessConfig{
	ReturnErr: false,
	Sleep:     15 * time.Millisecond,
})

// NewProcessNil returns nil.
var NewProcessNil = NewProcessMocker(MockProcessConfig{
	ReturnErr: false,
})

// NewProcessErr returns error.
var NewProcessErr = NewProcessMocker(MockProcessConfig{
	ReturnErr: true,
})
