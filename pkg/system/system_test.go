package system

import (
	"context"
	"testing"
	"time"

	"vidmash/pkg/log"
	"vidmash/pkg/storage"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/require"
)

func TestSystemStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.NewMockLogger()
	require.NoError(t, logger.Start(ctx))

	sys := New(nil, logger)
	sys.cpu = func(context.Context, time.Duration, bool) ([]float64, error) {
		return []float64{11.5}, nil
	}
	sys.ram = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{UsedPercent: 22.9}, nil
	}
	sys.disk = func() (storage.DiskUsage, error) {
		return storage.DiskUsage{Percent: 33, Formatted: "33GB"}, nil
	}

	sys.update(ctx)

	status := sys.Status()
	require.Equal(t, Status{
		CPUUsage:           11,
		RAMUsage:           22,
		DiskUsage:          33,
		DiskUsageFormatted: "33GB",
	}, status)
}
