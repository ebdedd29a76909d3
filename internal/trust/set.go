// Package trust holds the set of domains whose links are assumed alive when
// a liveness probe times out.
package trust

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultDomains are well-known documentation and reference hosts that are
// often slow or hostile to automated probes.
var DefaultDomains = []string{
	"docs.python.org",
	"developer.mozilla.org",
	"en.wikipedia.org",
	"github.com",
	"stackoverflow.com",
	"rust-lang.org",
	"doc.rust-lang.org",
	"crates.io",
	"reactjs.org",
	"react.dev",
	"nodejs.org",
	"npmjs.com",
	"pypi.org",
	"arxiv.org",
	"doi.org",
	"youtube.com",
	"www.youtube.com",
}

// Set is a concurrency-safe set of trusted host names.
type Set struct {
	mu      sync.RWMutex
	domains map[string]struct{}
}

// NewSet creates a Set holding the given domains.
func NewSet(domains ...string) *Set {
	s := &Set{}
	s.Replace(domains)
	return s
}

// Default creates a Set holding DefaultDomains.
func Default() *Set {
	return NewSet(DefaultDomains...)
}

// Contains reports whether host, or host without a leading "www.", is
// trusted. Matching is case-insensitive.
func (s *Set) Contains(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.domains[host]; ok {
		return true
	}
	_, ok := s.domains[strings.TrimPrefix(host, "www.")]
	return ok
}

// Replace swaps the whole set for domains. Blank entries are skipped.
func (s *Set) Replace(domains []string) {
	m := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			m[d] = struct{}{}
		}
	}
	s.mu.Lock()
	s.domains = m
	s.mu.Unlock()
}

// Domains returns the trusted domains in sorted order.
func (s *Set) Domains() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	s.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Len returns the number of trusted domains.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.domains)
}

type fileFormat struct {
	TrustedDomains []string `yaml:"trusted_domains"`
}

// ReadFile parses a YAML file of the form
//
//	trusted_domains:
//	  - docs.python.org
//	  - go.dev
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trust: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("trust: parse %s: %w", path, err)
	}
	return f.TrustedDomains, nil
}

// LoadFile replaces the set's contents with the domains listed in path.
func (s *Set) LoadFile(path string) error {
	domains, err := ReadFile(path)
	if err != nil {
		return err
	}
	s.Replace(domains)
	return nil
}
