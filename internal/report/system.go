// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package report records stress sessions as JSON and renders them as
// tables and graphs.
package report

import (
	"context"
	"runtime"
	"time"

	gocpu "github.com/shirou/gopsutil/v4/cpu"
	gomem "github.com/shirou/gopsutil/v4/mem"
)

// System call wrappers for testing
var (
	cpuInfo       = gocpu.InfoWithContext
	cpuCounts     = gocpu.CountsWithContext
	virtualMemory = gomem.VirtualMemoryWithContext
)

// SystemInfo describes the machine a session ran on.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	PhysicalCPU int     `json:"physical_cpu,omitempty"`
	GOMAXPROCS  int     `json:"gomaxprocs"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	GoVersion   string  `json:"go_version"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// GatherSystemInfo collects CPU and memory details. Fields gopsutil cannot
// read on this platform are left zero.
func GatherSystemInfo(ctx context.Context) SystemInfo {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	info := SystemInfo{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
	}

	if infos, err := cpuInfo(ctx); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if n, err := cpuCounts(ctx, false); err == nil {
		info.PhysicalCPU = n
	}
	if vm, err := virtualMemory(ctx); err == nil && vm != nil {
		info.TotalMemory = vm.Total
	}
	return info
}
