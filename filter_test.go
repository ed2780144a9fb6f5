package workstate

import "testing"

func TestIncludeExcludeFilter(t *testing.T) {
	cases := []struct {
		name    string
		filter  IncludeExcludeFilter
		path    string
		matches bool
	}{
		{"empty matches all", IncludeExcludeFilter{}, "state.bin", true},
		{"include hit", IncludeExcludeFilter{Include: []string{"*.bin"}}, "state.bin", true},
		{"include miss", IncludeExcludeFilter{Include: []string{"*.bin"}}, "state.txt", false},
		{"exclude hit", IncludeExcludeFilter{Exclude: []string{"*.tmp"}}, "scratch.tmp", false},
		{"exclude wins over include", IncludeExcludeFilter{Include: []string{"*"}, Exclude: []string{"*.tmp"}}, "scratch.tmp", false},
		{"nested path needs segment patterns", IncludeExcludeFilter{Include: []string{"*/*.bin"}}, "sub/state.bin", true},
		{"second include pattern", IncludeExcludeFilter{Include: []string{"*.txt", "*.bin"}}, "state.bin", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(tc.path); got != tc.matches {
				t.Fatalf("Match(%q) = %v, want %v", tc.path, got, tc.matches)
			}
		})
	}
}
