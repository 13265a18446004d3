//go:build linux

package proc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/srodi/appmem/pkg/types"
)

func writeProcFile(t *testing.T, root, pid, name, content string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s/%s: %v", pid, name, err)
	}
}

// fakeProcRoot lays out a minimal proc tree: a user process, a kernel thread,
// a java service and a pid whose files vanished.
func fakeProcRoot(t *testing.T, withMeminfo bool) string {
	t.Helper()
	root := t.TempDir()

	writeProcFile(t, root, "1", "status", "Name:\tsystemd\nState:\tS (sleeping)\nVmRSS:\t    8192 kB\n")
	writeProcFile(t, root, "1", "cmdline", "/sbin/init\x00splash\x00")

	writeProcFile(t, root, "2", "status", "Name:\tkthreadd\nState:\tS (sleeping)\n")
	writeProcFile(t, root, "2", "cmdline", "")

	writeProcFile(t, root, "100", "status", "Name:\tjava\nState:\tS (sleeping)\nVmRSS:\t   51200 kB\n")
	writeProcFile(t, root, "100", "cmdline", "/usr/bin/java\x00-jar\x00/opt/app/service.jar\x00")

	if err := os.MkdirAll(filepath.Join(root, "200"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "sys"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if withMeminfo {
		meminfo := "MemTotal:       16384000 kB\nMemFree:         1024000 kB\n"
		if err := os.WriteFile(filepath.Join(root, "meminfo"), []byte(meminfo), 0o644); err != nil {
			t.Fatalf("write meminfo: %v", err)
		}
	}
	return root
}

func TestSnapshotReadsProcessesAndSkipsUnreadable(t *testing.T) {
	c, err := NewCollector(fakeProcRoot(t, true), nil)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// readdir order is filesystem dependent.
	sort.Slice(snap.Processes, func(i, j int) bool { return snap.Processes[i].PID < snap.Processes[j].PID })
	want := []types.ProcessRecord{
		{PID: 1, CommandName: "init", Arguments: []string{"splash"}, MemoryBytes: 8192 * 1024},
		{PID: 100, CommandName: "java", Arguments: []string{"-jar", "/opt/app/service.jar"}, MemoryBytes: 51200 * 1024},
	}
	if !reflect.DeepEqual(snap.Processes, want) {
		t.Fatalf("unexpected processes:\n got %+v\nwant %+v", snap.Processes, want)
	}
	if snap.SystemTotalBytes != 16384000*1024 {
		t.Fatalf("unexpected system total %d", snap.SystemTotalBytes)
	}
}

func TestSnapshotFallsBackToSysinfo(t *testing.T) {
	t.Cleanup(func() { sysinfo = unix.Sysinfo })
	sysinfo = func(info *unix.Sysinfo_t) error {
		info.Totalram = 4096
		info.Unit = 1024
		return nil
	}

	c, err := NewCollector(fakeProcRoot(t, false), nil)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.SystemTotalBytes != 4096*1024 {
		t.Fatalf("expected sysinfo total, got %d", snap.SystemTotalBytes)
	}

	sysinfo = func(info *unix.Sysinfo_t) error { return unix.EPERM }
	if snap, _ := c.Snapshot(context.Background()); snap.SystemTotalBytes != 0 {
		t.Fatalf("expected unknown system total, got %d", snap.SystemTotalBytes)
	}
}

func TestNewCollectorMissingRoot(t *testing.T) {
	_, err := NewCollector(filepath.Join(t.TempDir(), "missing"), nil)
	if !errors.Is(err, types.ErrSnapshot) {
		t.Fatalf("expected snapshot error, got %v", err)
	}
}

func TestSnapshotHonoursCancelledContext(t *testing.T) {
	c, err := NewCollector(fakeProcRoot(t, true), nil)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Snapshot(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
