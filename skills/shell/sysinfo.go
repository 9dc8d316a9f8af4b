package shell

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// maxProcessRows caps the process listing in a single response.
const maxProcessRows = 50

// systemInfo gathers platform, CPU, memory and disk details.
func systemInfo(ctx context.Context) (any, error) {
	info := map[string]any{
		"platform": map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
		},
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info["platform"] = map[string]any{
			"os":       hi.OS,
			"arch":     runtime.GOARCH,
			"hostname": hi.Hostname,
			"release":  hi.KernelVersion,
			"uptime_s": hi.Uptime,
		}
	}

	cpuInfo := map[string]any{}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		cpuInfo["physical_cores"] = physical
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		cpuInfo["logical_cores"] = logical
	}
	info["cpu"] = cpuInfo

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info["memory"] = map[string]any{
			"total":     vm.Total,
			"available": vm.Available,
			"used":      vm.Used,
			"percent":   vm.UsedPercent,
		}
	}

	var disks []map[string]any
	if partitions, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, part := range partitions {
			usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
			if err != nil {
				continue
			}
			disks = append(disks, map[string]any{
				"device":     part.Device,
				"mountpoint": part.Mountpoint,
				"fstype":     part.Fstype,
				"total":      usage.Total,
				"used":       usage.Used,
				"free":       usage.Free,
				"percent":    usage.UsedPercent,
			})
		}
	}
	info["disk"] = disks

	return info, nil
}

// listProcesses returns the busiest processes by CPU usage.
func listProcesses(ctx context.Context) (any, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("failed to list processes: %v", err)}, nil
	}

	rows := make([]map[string]any, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // process exited or access denied
		}
		row := map[string]any{"pid": p.Pid, "name": name}
		if cpuPct, err := p.CPUPercentWithContext(ctx); err == nil {
			row["cpu_percent"] = cpuPct
		}
		if memPct, err := p.MemoryPercentWithContext(ctx); err == nil {
			row["memory_percent"] = float64(memPct)
		}
		rows = append(rows, row)
	}
	sortProcessRows(rows)
	if len(rows) > maxProcessRows {
		rows = rows[:maxProcessRows]
	}

	return map[string]any{
		"process_count": len(procs),
		"processes":     rows,
	}, nil
}
