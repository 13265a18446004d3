//go:build linux
// +build linux

package proc

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"

	"github.com/srodi/appmem/pkg/collector"
	"github.com/srodi/appmem/pkg/types"
)

// Collector reads a process snapshot from a mounted proc filesystem.
type Collector struct {
	fs  procfs.FS
	log *zap.Logger
}

// NewCollector opens the proc filesystem at root, /proc when root is empty.
func NewCollector(root string, log *zap.Logger) (*Collector, error) {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", types.ErrSnapshot, root, err)
	}
	return &Collector{fs: fs, log: log}, nil
}

// Snapshot lists every process with resident memory. Processes that exit
// while being read and processes without resident memory (kernel threads)
// are skipped.
func (c *Collector) Snapshot(ctx context.Context) (types.Snapshot, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("%w: listing processes: %w", types.ErrSnapshot, err)
	}

	records := make([]types.ProcessRecord, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return types.Snapshot{}, err
		}
		rec, err := readRecord(p)
		if err != nil {
			skipped++
			c.log.Debug("skipping process", zap.Int("pid", p.PID), zap.Error(err))
			continue
		}
		if rec.MemoryBytes == 0 {
			skipped++
			c.log.Debug("skipping process without resident memory", zap.Int("pid", p.PID), zap.String("comm", rec.CommandName))
			continue
		}
		records = append(records, rec)
	}
	c.log.Debug("process snapshot complete", zap.Int("processes", len(records)), zap.Int("skipped", skipped))

	return types.Snapshot{
		Processes:        records,
		SystemTotalBytes: c.systemMemoryBytes(),
	}, nil
}

func readRecord(p procfs.Proc) (types.ProcessRecord, error) {
	status, err := p.NewStatus()
	if err != nil {
		return types.ProcessRecord{}, fmt.Errorf("reading status: %w", err)
	}
	cmdline, err := p.CmdLine()
	if err != nil {
		return types.ProcessRecord{}, fmt.Errorf("reading cmdline: %w", err)
	}
	return types.ProcessRecord{
		PID:         int32(p.PID),
		CommandName: collector.CommandName(cmdline, status.Name),
		Arguments:   collector.Arguments(cmdline),
		MemoryBytes: status.VmRSS,
	}, nil
}
