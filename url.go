package workstate

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// StoreURL is the parsed form of a store reference. Scheme selects the
// backend, Authority the store root (bucket, database, top-level directory),
// Path the object key or prefix under that root. Raw round-trips the input.
type StoreURL struct {
	Scheme    string
	Authority string
	Path      string
	Raw       string
}

func (u *StoreURL) String() string { return u.Raw }

// ParseURL validates the shape of a store URL without consulting a scheme
// registry. Use Factory.Resolve to also reject schemes no backend is
// registered for.
//
// URLs without a host (file:///var/data/state.bin) have the first path
// segment promoted to the authority, so the example parses to authority
// "var" and path "data/state.bin".
func ParseURL(raw string) (*StoreURL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		return nil, fmt.Errorf("%w: missing scheme separator in %q", ErrInvalidURL, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURL, raw)
	}

	authority := u.Host
	path := strings.Trim(u.Path, "/")

	if authority == "" {
		// Schemes like file:// carry the root in the path.
		seg, rest, _ := strings.Cut(path, "/")
		authority = seg
		path = rest
	}
	if authority == "" {
		return nil, fmt.Errorf("%w: missing authority in %q", ErrInvalidURL, raw)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: missing path in %q", ErrInvalidURL, raw)
	}
	if err := validateKey(path); err != nil {
		return nil, err
	}

	authority, err = normalizeAuthority(authority)
	if err != nil {
		return nil, fmt.Errorf("%w: authority %q: %w", ErrInvalidURL, u.Host, err)
	}

	return &StoreURL{
		Scheme:    u.Scheme,
		Authority: authority,
		Path:      path,
		Raw:       raw,
	}, nil
}

// normalizeAuthority maps internationalized authorities to their A-label
// (punycode) form. ASCII authorities pass through untouched.
func normalizeAuthority(authority string) (string, error) {
	ascii := true
	for i := 0; i < len(authority); i++ {
		if authority[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return authority, nil
	}
	return idna.Lookup.ToASCII(authority)
}

// validateKey rejects keys and prefixes that climb out of the store root.
func validateKey(key string) error {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q contains a parent reference", ErrInvalidURL, key)
		}
	}
	return nil
}
