//go:build !linux
// +build !linux

package proc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/srodi/appmem/pkg/types"
)

var errUnsupported = fmt.Errorf("%w: proc collector requires linux", types.ErrSnapshot)

// Collector is a placeholder on non-Linux platforms.
type Collector struct{}

// NewCollector returns an error because /proc is only available on Linux.
func NewCollector(root string, log *zap.Logger) (*Collector, error) {
	return nil, errUnsupported
}

// Snapshot always fails on unsupported platforms.
func (c *Collector) Snapshot(ctx context.Context) (types.Snapshot, error) {
	return types.Snapshot{}, errUnsupported
}
