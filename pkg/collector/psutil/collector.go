// Package psutil reads process snapshots through gopsutil, which works on
// every platform gopsutil supports.
package psutil

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/srodi/appmem/pkg/collector"
	"github.com/srodi/appmem/pkg/types"
)

// handle is the subset of *process.Process the collector reads.
type handle interface {
	NameWithContext(ctx context.Context) (string, error)
	CmdlineSliceWithContext(ctx context.Context) ([]string, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
}

type pidHandle struct {
	*process.Process
}

// listProcesses allows tests to stub process enumeration.
var listProcesses = func(ctx context.Context) ([]int32, []handle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	pids := make([]int32, len(procs))
	handles := make([]handle, len(procs))
	for i, p := range procs {
		pids[i] = p.Pid
		handles[i] = pidHandle{p}
	}
	return pids, handles, nil
}

// totalMemory allows tests to stub the system memory lookup.
var totalMemory = func(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// Collector lists processes through gopsutil.
type Collector struct {
	log *zap.Logger
}

// NewCollector returns a gopsutil backed collector.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Snapshot lists every process with resident memory. Processes that cannot
// be read, usually because they exited, are skipped.
func (c *Collector) Snapshot(ctx context.Context) (types.Snapshot, error) {
	pids, handles, err := listProcesses(ctx)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("%w: listing processes: %w", types.ErrSnapshot, err)
	}

	records := make([]types.ProcessRecord, 0, len(handles))
	skipped := 0
	for i, h := range handles {
		if err := ctx.Err(); err != nil {
			return types.Snapshot{}, err
		}
		info, err := h.MemoryInfoWithContext(ctx)
		if err != nil || info == nil || info.RSS == 0 {
			skipped++
			c.log.Debug("skipping process", zap.Int32("pid", pids[i]), zap.Error(err))
			continue
		}
		// Both may fail for processes owned by other users on some platforms.
		cmdline, _ := h.CmdlineSliceWithContext(ctx)
		name, _ := h.NameWithContext(ctx)
		records = append(records, types.ProcessRecord{
			PID:         pids[i],
			CommandName: collector.CommandName(cmdline, name),
			Arguments:   collector.Arguments(cmdline),
			MemoryBytes: info.RSS,
		})
	}
	c.log.Debug("process snapshot complete", zap.Int("processes", len(records)), zap.Int("skipped", skipped))

	total, err := totalMemory(ctx)
	if err != nil {
		c.log.Debug("system memory unavailable", zap.Error(err))
	}
	return types.Snapshot{Processes: records, SystemTotalBytes: total}, nil
}
