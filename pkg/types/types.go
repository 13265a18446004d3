package types

import (
	"errors"
	"fmt"
)

// DefaultLimit controls how many application groups we display when no limit is given.
const DefaultLimit = 20

var (
	// ErrConfig marks invalid options. Nothing is printed when it is returned.
	ErrConfig = errors.New("configuration error")
	// ErrSnapshot marks a process source that could not enumerate the system at all.
	ErrSnapshot = errors.New("snapshot error")
)

// ProcessRecord is one live process as seen by a snapshot source.
type ProcessRecord struct {
	PID         int32
	CommandName string
	// Arguments excludes argv[0].
	Arguments   []string
	MemoryBytes uint64
}

// Snapshot is the complete set of processes taken at one point in time.
type Snapshot struct {
	Processes []ProcessRecord
	// SystemTotalBytes is the machine's physical memory, zero when unknown.
	SystemTotalBytes uint64
}

// GroupEntry accumulates every process sharing one resolved name.
type GroupEntry struct {
	Name             string
	Count            int
	TotalMemoryBytes uint64
}

// RankedRow is one line of the final report.
type RankedRow struct {
	Name              string  `yaml:"name"`
	Count             int     `yaml:"count"`
	TotalMemoryBytes  uint64  `yaml:"memory_bytes"`
	TotalMemoryMB     float64 `yaml:"memory_mb"`
	Percent           float64 `yaml:"percent"`
	CumulativePercent float64 `yaml:"cumulative_percent"`
}

// Report is what the presenter renders.
type Report struct {
	Rows             []RankedRow `yaml:"rows"`
	Groups           int         `yaml:"groups"`
	Processes        int         `yaml:"processes"`
	GrandTotalBytes  uint64      `yaml:"grand_total_bytes"`
	SystemTotalBytes uint64      `yaml:"system_total_bytes,omitempty"`
}

// JavaMode selects how interpreted launcher processes are told apart.
type JavaMode string

const (
	JavaAuto JavaMode = "auto"
	JavaJar  JavaMode = "jar"
	JavaMain JavaMode = "main"
)

// ParseJavaMode validates a --java-by value. The empty string means auto.
func ParseJavaMode(s string) (JavaMode, error) {
	switch JavaMode(s) {
	case "", JavaAuto:
		return JavaAuto, nil
	case JavaJar, JavaMain:
		return JavaMode(s), nil
	}
	return "", fmt.Errorf("%w: unknown java-by mode %q (want auto, jar or main)", ErrConfig, s)
}
