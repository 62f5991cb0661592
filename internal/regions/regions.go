// Package regions builds and validates named region collections over an
// ocean model's horizontal grid. A region collection stacks 0/1 masks along
// a leading region axis and carries one label per mask; reductions elsewhere
// select regions by label and multiply the masks into their weights.
package regions

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
)

// maskRank is the required rank of a region mask stack.
const maskRank = 3

// Sentinel errors for region collection validation.
var (
	// ErrNoRegionAxis indicates a collection without region labels.
	ErrNoRegionAxis = errors.New("region collection does not carry a region label axis")

	// ErrMaskRank indicates masks that are not [region, y, x].
	ErrMaskRank = errors.New("region masks must be [region, y, x]")

	// ErrLabelCount indicates labels that do not pair one-to-one with masks.
	ErrLabelCount = errors.New("region labels must pair one-to-one with the region axis")
)

// Set is a labeled collection of horizontal region masks.
type Set struct {
	Names []string
	Masks *sparse.DenseArray // [region, y, x], 1 inside the region
}

// NewSet pairs labels with a [region, y, x] mask stack.
func NewSet(names []string, masks *sparse.DenseArray) (*Set, error) {
	s := &Set{Names: names, Masks: masks}

	err := s.Validate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks that the collection carries a region label axis matching
// the mask stack.
func (s *Set) Validate() error {
	if len(s.Names) == 0 {
		return fmt.Errorf("%w: no labels on axis %q", ErrNoRegionAxis, "region")
	}

	if s.Masks == nil || len(s.Masks.Shape) != maskRank {
		return ErrMaskRank
	}

	if s.Masks.Shape[0] != len(s.Names) {
		return fmt.Errorf("%w: %d labels, %d masks", ErrLabelCount, len(s.Names), s.Masks.Shape[0])
	}

	return nil
}

// Len returns the number of regions.
func (s *Set) Len() int {
	return len(s.Names)
}

// NY returns the meridional extent of the masks.
func (s *Set) NY() int {
	return s.Masks.Shape[1]
}

// NX returns the zonal extent of the masks.
func (s *Set) NX() int {
	return s.Masks.Shape[2]
}

// In reports whether cell (j, i) belongs to region r.
func (s *Set) In(r, j, i int) bool {
	return s.Masks.Get(r, j, i) == 1.0
}
