package report

import (
	"sort"

	"github.com/srodi/appmem/pkg/types"
)

// bytesPerMB converts resident bytes to the megabytes shown in reports.
const bytesPerMB = 1024 * 1024

// Namer resolves the application name a process is grouped under.
type Namer interface {
	Name(rec types.ProcessRecord) string
}

// Aggregate folds processes into one GroupEntry per resolved name. The result
// does not depend on the order of procs.
func Aggregate(procs []types.ProcessRecord, namer Namer) map[string]*types.GroupEntry {
	groups := make(map[string]*types.GroupEntry)
	ensure := func(name string) *types.GroupEntry {
		if group, ok := groups[name]; ok {
			return group
		}
		group := &types.GroupEntry{Name: name}
		groups[name] = group
		return group
	}

	for _, proc := range procs {
		group := ensure(namer.Name(proc))
		group.Count++
		group.TotalMemoryBytes += proc.MemoryBytes
	}
	return groups
}

// Rank orders groups by memory, largest first with ties broken by name, and
// annotates each row with its share of the grand total. Only the first limit
// rows are returned; limit <= 0 keeps every row. Dropped rows are not folded
// into an "other" bucket, so the last cumulative percent is below 100 when
// the output is truncated.
func Rank(groups map[string]*types.GroupEntry, limit int) []types.RankedRow {
	sorted := make([]types.GroupEntry, 0, len(groups))
	var grandTotal uint64
	for _, group := range groups {
		sorted = append(sorted, *group)
		grandTotal += group.TotalMemoryBytes
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalMemoryBytes == sorted[j].TotalMemoryBytes {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].TotalMemoryBytes > sorted[j].TotalMemoryBytes
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]types.RankedRow, 0, len(sorted))
	var cumulative float64
	for _, group := range sorted {
		var percent float64
		if grandTotal > 0 {
			percent = 100 * float64(group.TotalMemoryBytes) / float64(grandTotal)
		}
		cumulative += percent
		rows = append(rows, types.RankedRow{
			Name:              group.Name,
			Count:             group.Count,
			TotalMemoryBytes:  group.TotalMemoryBytes,
			TotalMemoryMB:     float64(group.TotalMemoryBytes) / bytesPerMB,
			Percent:           percent,
			CumulativePercent: cumulative,
		})
	}
	return rows
}

// Build runs one snapshot through name resolution, aggregation and ranking.
func Build(snap types.Snapshot, namer Namer, limit int) types.Report {
	groups := Aggregate(snap.Processes, namer)
	var grandTotal uint64
	for _, group := range groups {
		grandTotal += group.TotalMemoryBytes
	}
	return types.Report{
		Rows:             Rank(groups, limit),
		Groups:           len(groups),
		Processes:        len(snap.Processes),
		GrandTotalBytes:  grandTotal,
		SystemTotalBytes: snap.SystemTotalBytes,
	}
}
