package workstate

import (
	"errors"
	"testing"
)

func TestParseURL(t *testing.T) {
	u, err := ParseURL("memory://bucket/state/step1.bin")
	if err != nil {
		t.Fatalf("ParseURL err: %v", err)
	}
	if u.Scheme != "memory" {
		t.Errorf("scheme got %q", u.Scheme)
	}
	if u.Authority != "bucket" {
		t.Errorf("authority got %q", u.Authority)
	}
	if u.Path != "state/step1.bin" {
		t.Errorf("path got %q", u.Path)
	}
	if u.Raw != "memory://bucket/state/step1.bin" {
		t.Errorf("raw did not round-trip: %q", u.Raw)
	}
}

func TestParseURLHostlessFile(t *testing.T) {
	u, err := ParseURL("file:///var/data/state.bin")
	if err != nil {
		t.Fatalf("ParseURL err: %v", err)
	}
	if u.Authority != "var" {
		t.Errorf("authority got %q", u.Authority)
	}
	if u.Path != "data/state.bin" {
		t.Errorf("path got %q", u.Path)
	}
}

func TestParseURLInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no separator", "not-a-url"},
		{"missing path", "s3://bucket"},
		{"missing authority", "s3://"},
		{"parent reference", "s3://bucket/../escape"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseURL(tc.raw); !errors.Is(err, ErrInvalidURL) {
				t.Fatalf("ParseURL(%q) err = %v, want ErrInvalidURL", tc.raw, err)
			}
		})
	}
}

func TestParseURLIDNAuthority(t *testing.T) {
	u, err := ParseURL("s3://bücket/state.bin")
	if err != nil {
		t.Fatalf("ParseURL err: %v", err)
	}
	if u.Authority != "xn--bcket-kva" {
		t.Errorf("authority got %q, want punycode form", u.Authority)
	}
}

func TestResolveUnrecognizedScheme(t *testing.T) {
	f := NewFactory()
	if _, err := f.Resolve("gopher://bucket/key"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err = %v, want ErrInvalidURL", err)
	}
}

func TestResolveRegisteredScheme(t *testing.T) {
	f := NewFactory()
	u, err := f.Resolve("memory://bucket/state/step1.bin")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if u.Scheme != "memory" || u.Authority != "bucket" || u.Path != "state/step1.bin" {
		t.Fatalf("unexpected parse: %+v", u)
	}
}
