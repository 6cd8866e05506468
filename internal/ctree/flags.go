package ctree

import (
	"fmt"
	"strings"
)

// AttributeSet selects which attribute bundles the engine computes.
type AttributeSet uint32

// Attribute bundles. OTSU implies AREA and triggers the neighborhood-ring
// statistics; AREA_DERIVATIVES and MSER need subtree areas and imply AREA
// as well.
const (
	AttrArea AttributeSet = 1 << iota
	AttrAreaDerivatives
	AttrContrast
	AttrVolume
	AttrBorderGradient
	AttrComplexityCompacity
	AttrBoundingBox
	AttrSubNodes
	AttrOtsu
	AttrMSER
)

// AttrAll selects every bundle.
const AttrAll = AttrArea | AttrAreaDerivatives | AttrContrast | AttrVolume |
	AttrBorderGradient | AttrComplexityCompacity | AttrBoundingBox |
	AttrSubNodes | AttrOtsu | AttrMSER

// Has reports whether every bundle in f is selected.
func (s AttributeSet) Has(f AttributeSet) bool {
	return s&f == f
}

// normalize enforces bundle dependencies.
func (s AttributeSet) normalize() AttributeSet {
	if s.Has(AttrOtsu) || s.Has(AttrAreaDerivatives) || s.Has(AttrMSER) || s.Has(AttrVolume) ||
		s.Has(AttrComplexityCompacity) {
		s |= AttrArea
	}
	// Complexity and the border-gradient mean both come from the contour pass.
	return s
}

// needsContour reports whether the contour pass must run.
func (s AttributeSet) needsContour() bool {
	return s.Has(AttrComplexityCompacity) || s.Has(AttrBorderGradient)
}

// needsRing reports whether the neighborhood-ring pass must run.
func (s AttributeSet) needsRing() bool {
	return s.Has(AttrOtsu)
}

var attrNames = map[string]AttributeSet{
	"area":                 AttrArea,
	"area_derivatives":     AttrAreaDerivatives,
	"contrast":             AttrContrast,
	"volume":               AttrVolume,
	"border_gradient":      AttrBorderGradient,
	"complexity_compacity": AttrComplexityCompacity,
	"bounding_box":         AttrBoundingBox,
	"sub_nodes":            AttrSubNodes,
	"otsu":                 AttrOtsu,
	"mser":                 AttrMSER,
	"all":                  AttrAll,
}

// ParseAttributes converts bundle names (as used in config files and on the
// command line) into an AttributeSet.
func ParseAttributes(names []string) (AttributeSet, error) {
	var s AttributeSet
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		flag, ok := attrNames[key]
		if !ok {
			return 0, fmt.Errorf("unknown attribute bundle %q", name)
		}
		s |= flag
	}
	return s, nil
}

// String lists the selected bundle names.
func (s AttributeSet) String() string {
	if s == 0 {
		return "none"
	}
	ordered := []struct {
		name string
		flag AttributeSet
	}{
		{"area", AttrArea},
		{"area_derivatives", AttrAreaDerivatives},
		{"contrast", AttrContrast},
		{"volume", AttrVolume},
		{"border_gradient", AttrBorderGradient},
		{"complexity_compacity", AttrComplexityCompacity},
		{"bounding_box", AttrBoundingBox},
		{"sub_nodes", AttrSubNodes},
		{"otsu", AttrOtsu},
		{"mser", AttrMSER},
	}
	var parts []string
	for _, e := range ordered {
		if s.Has(e.flag) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, ",")
}
