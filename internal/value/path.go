package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is a parsed dotted field path like "layers.score.threshold" or
// "samples.3.id".
type Path struct {
	segments []Segment
}

// ParsePath splits a dotted path into segments. Purely numeric segments are
// treated as array indices. An empty string parses to the root path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return Path{}, fmt.Errorf("path %q has an empty segment", s)
		}
		if idx, err := strconv.Atoi(p); err == nil && idx >= 0 {
			segs = append(segs, Segment{Index: idx, IsIndex: true})
			continue
		}
		segs = append(segs, Segment{Key: p})
	}
	return Path{segments: segs}, nil
}

// MustParsePath is ParsePath for compile-time-known paths.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Segments returns the parsed steps.
func (p Path) Segments() []Segment { return p.segments }

// IsRoot reports whether the path addresses the whole tree.
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

func (p Path) String() string {
	parts := make([]string, len(p.segments))
	for i, seg := range p.segments {
		if seg.IsIndex {
			parts[i] = strconv.Itoa(seg.Index)
		} else {
			parts[i] = seg.Key
		}
	}
	return strings.Join(parts, ".")
}
