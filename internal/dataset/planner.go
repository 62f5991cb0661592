package dataset

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
)

// Sizing constants for resident-memory planning.
const (
	// baseOverheadBytes covers the runtime, codec buffers and grid arrays.
	baseOverheadBytes = 256 * humanize.MiByte

	// defaultFileBytes sizes one decoded file when no estimate is given.
	defaultFileBytes = 64 * humanize.MiByte

	// maxReaders caps file-read concurrency.
	maxReaders = 16

	bytesPerCell = 8
)

// ErrInvalidSizeFormat indicates a memory size string humanize cannot parse.
var ErrInvalidSizeFormat = errors.New("invalid size format")

// Planner sizes the file-reading pool so decoded variables stay inside a
// memory budget.
type Planner struct {
	TotalFiles   int
	MemoryBudget int64 // bytes, zero means unlimited
	BytesPerFile int64 // resident footprint of one decoded file
}

// Workers returns the read concurrency to use.
func (p *Planner) Workers() int {
	limit := min(runtime.GOMAXPROCS(0), maxReaders)

	if p.TotalFiles > 0 {
		limit = min(limit, p.TotalFiles)
	}

	if p.MemoryBudget <= 0 {
		return max(limit, 1)
	}

	perFile := p.BytesPerFile
	if perFile <= 0 {
		perFile = defaultFileBytes
	}

	available := p.MemoryBudget - baseOverheadBytes
	if available < perFile {
		return 1
	}

	return max(min(limit, int(available/perFile)), 1)
}

// ParseBudget parses a human-readable size string ("8GiB"), returning 0 for
// empty or "0".
func ParseBudget(sizeValue string) (int64, error) {
	trimmed := strings.TrimSpace(sizeValue)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	parsed, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w for memory-budget: %s", ErrInvalidSizeFormat, sizeValue)
	}

	if parsed > math.MaxInt64 {
		return 0, fmt.Errorf("%w for memory-budget: %s", ErrInvalidSizeFormat, sizeValue)
	}

	return int64(parsed), nil
}

// FileFootprint estimates the resident bytes of one variable across a file
// with the given dimension lengths.
func FileFootprint(dims []int) int64 {
	if len(dims) == 0 {
		return 0
	}

	n := int64(bytesPerCell)
	for _, d := range dims {
		n *= int64(d)
	}

	return n
}
