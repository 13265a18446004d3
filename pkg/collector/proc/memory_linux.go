//go:build linux
// +build linux

package proc

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// sysinfo allows tests to stub the kernel fallback.
var sysinfo = unix.Sysinfo

// systemMemoryBytes returns MemTotal from meminfo, falling back to sysinfo(2).
// Zero means unknown; the report simply omits the system share.
// TODO: prefer the cgroup memory.max limit when running inside a container.
func (c *Collector) systemMemoryBytes() uint64 {
	info, err := c.fs.Meminfo()
	if err == nil && info.MemTotal != nil && *info.MemTotal > 0 {
		return *info.MemTotal * 1024
	}
	c.log.Debug("meminfo unavailable, using sysinfo", zap.Error(err))

	total, err := sysinfoTotal()
	if err != nil {
		c.log.Debug("sysinfo unavailable", zap.Error(err))
		return 0
	}
	return total
}

func sysinfoTotal() (uint64, error) {
	var info unix.Sysinfo_t
	if err := sysinfo(&info); err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit, nil
}
