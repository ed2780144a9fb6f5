package workstate

import "path"

// Filter decides whether an object participates in a directory load or
// persist. Paths are slash-separated and relative to the prefix or source
// directory.
type Filter interface {
	Match(path string) bool
}

// IncludeExcludeFilter selects paths with glob patterns, matched per
// path.Match semantics against the full relative path. Exclude wins over
// include; a non-empty include list requires at least one match.
type IncludeExcludeFilter struct {
	Include []string
	Exclude []string
}

func (f IncludeExcludeFilter) Match(p string) bool {
	for _, pattern := range f.Exclude {
		if ok, _ := path.Match(pattern, p); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
