package model

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// PackageID is the dense identifier a package name maps to.
// IDs index rows of the beta matrix.
type PackageID uint32

// PatternSet is a set of PackageIDs backed by a roaring bitmap.
// It is not safe for concurrent mutation; loaded patterns are never mutated.
type PatternSet struct {
	rb *roaring.Bitmap
}

// NewPatternSet creates an empty pattern set.
func NewPatternSet() *PatternSet {
	return &PatternSet{rb: roaring.New()}
}

// PatternSetOf creates a pattern set from the given ids.
func PatternSetOf(ids ...PackageID) *PatternSet {
	s := NewPatternSet()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add adds a PackageID to the set. Duplicates are a no-op.
func (s *PatternSet) Add(id PackageID) {
	s.rb.Add(uint32(id))
}

// Contains checks if a PackageID is in the set.
func (s *PatternSet) Contains(id PackageID) bool {
	return s.rb.Contains(uint32(id))
}

// Equals reports strict set equality.
func (s *PatternSet) Equals(other *PatternSet) bool {
	return s.rb.Equals(other.rb)
}

// Cardinality returns the number of ids in the set.
func (s *PatternSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Max returns the largest id in the set. The set must not be empty.
func (s *PatternSet) Max() PackageID {
	return PackageID(s.rb.Maximum())
}

// IsEmpty returns true if the set has no ids.
func (s *PatternSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// ManifestPattern is a historical package usage pattern. ID is the pattern's
// row index into the theta matrix.
type ManifestPattern struct {
	ID  uint64
	Set *PatternSet
}
