// Package sysinfo collects a snapshot of the host for the startup banner.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const bytesPerGB = 1024 * 1024 * 1024

// Info describes the host the server runs on.
type Info struct {
	Platform      string
	Architecture  string
	CPUCores      int
	TotalMemoryGB float64
	FreeMemoryGB  float64
	Uptime        time.Duration
}

// Collect gathers host information. Platform, architecture and core count
// are always filled in; memory and uptime are best effort and the first
// error encountered is returned alongside the partial Info.
func Collect(ctx context.Context) (Info, error) {
	info := Info{
		Platform:     runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUCores:     runtime.NumCPU(),
	}

	var firstErr error

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		firstErr = fmt.Errorf("failed to read memory stats: %w", err)
	} else {
		info.setMemory(vm)
	}

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to read uptime: %w", err)
		}
	} else {
		info.Uptime = time.Duration(uptime) * time.Second
	}

	return info, firstErr
}

// setMemory records total and free memory. Free is the unused pool (MemFree),
// not the larger reclaimable figure the kernel reports as available.
func (i *Info) setMemory(vm *mem.VirtualMemoryStat) {
	i.TotalMemoryGB = float64(vm.Total) / bytesPerGB
	i.FreeMemoryGB = float64(vm.Free) / bytesPerGB
}

// UptimeHours is the uptime in fractional hours.
func (i Info) UptimeHours() float64 {
	return i.Uptime.Hours()
}

// Log writes the snapshot as a single structured line. Memory is rounded to
// two decimals, as is uptime in hours.
func Log(logger zerolog.Logger, info Info) {
	logger.Info().
		Str("platform", info.Platform).
		Str("architecture", info.Architecture).
		Int("cpu_cores", info.CPUCores).
		Str("total_memory", fmt.Sprintf("%.2f GB", info.TotalMemoryGB)).
		Str("free_memory", fmt.Sprintf("%.2f GB", info.FreeMemoryGB)).
		Str("uptime", fmt.Sprintf("%.2f hours", info.UptimeHours())).
		Msg("system information")
}
