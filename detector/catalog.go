package detector

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"sentinel-bot/model"
)

// PatternCatalog is one named regex catalog. The first matching pattern
// flags the whole catalog for an event.
type PatternCatalog struct {
	Name     string   `yaml:"name"`
	Severity string   `yaml:"severity"`
	Weight   float64  `yaml:"weight"`
	Patterns []string `yaml:"patterns"`
}

// Catalog is the serializable form of all detector configuration, loaded
// from data/catalogs.yaml with hardcoded defaults when the file is absent.
type Catalog struct {
	BlockedDomains      []string         `yaml:"blocked_domains"`
	SuspiciousTLDs      []string         `yaml:"suspicious_tlds"`
	DangerousExtensions []string         `yaml:"dangerous_extensions"`
	TriggerKeywords     []string         `yaml:"trigger_keywords"`
	SuspiciousUsernames []string         `yaml:"suspicious_usernames"`
	PatternCatalogs     []PatternCatalog `yaml:"pattern_catalogs"`
}

type compiledCatalog struct {
	Name     string
	Severity model.Severity
	Weight   float64
	Patterns []*regexp.Regexp
}

// Compiled is the immutable, ready-to-match form of a Catalog. Readers
// always see a complete snapshot; refresh publishes a new one atomically.
type Compiled struct {
	BlockedDomains      []string
	SuspiciousTLDs      []string
	DangerousExtensions []string
	TriggerKeywords     []string
	SuspiciousUsernames []*regexp.Regexp
	Catalogs            []compiledCatalog
}

func (c *Catalog) compile() (*Compiled, error) {
	out := &Compiled{
		BlockedDomains:      c.BlockedDomains,
		SuspiciousTLDs:      c.SuspiciousTLDs,
		DangerousExtensions: c.DangerousExtensions,
		TriggerKeywords:     c.TriggerKeywords,
	}
	for _, p := range c.SuspiciousUsernames {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("suspicious_usernames: bad pattern %q: %w", p, err)
		}
		out.SuspiciousUsernames = append(out.SuspiciousUsernames, re)
	}
	for _, pc := range c.PatternCatalogs {
		cc := compiledCatalog{
			Name:     pc.Name,
			Severity: model.Severity(pc.Severity),
			Weight:   pc.Weight,
		}
		for _, p := range pc.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("catalog %s: bad pattern %q: %w", pc.Name, p, err)
			}
			cc.Patterns = append(cc.Patterns, re)
		}
		out.Catalogs = append(out.Catalogs, cc)
	}
	return out, nil
}

// Store holds the current compiled catalog and supports copy-then-publish
// refresh from disk. Concurrent readers never see a partially built catalog.
type Store struct {
	path    string
	current atomic.Value // *Compiled
}

// NewStore compiles the defaults (overlaid with the file at path, if it
// exists) and returns a ready store.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active compiled catalog.
func (s *Store) Current() *Compiled {
	return s.current.Load().(*Compiled)
}

// Refresh re-reads the catalog file, compiles a fresh snapshot and swaps
// it in. On any error the previous snapshot stays active.
func (s *Store) Refresh() error {
	cat := defaultCatalog()
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err == nil {
			var override Catalog
			if err := yaml.Unmarshal(data, &override); err != nil {
				return fmt.Errorf("failed to parse catalog file %s: %w", s.path, err)
			}
			cat.merge(&override)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
		} else {
			log.Printf("Catalog file %s not found, using built-in defaults", s.path)
		}
	}

	compiled, err := cat.compile()
	if err != nil {
		return err
	}
	s.current.Store(compiled)
	return nil
}

// merge overlays non-empty fields of o onto c.
func (c *Catalog) merge(o *Catalog) {
	if len(o.BlockedDomains) > 0 {
		c.BlockedDomains = o.BlockedDomains
	}
	if len(o.SuspiciousTLDs) > 0 {
		c.SuspiciousTLDs = o.SuspiciousTLDs
	}
	if len(o.DangerousExtensions) > 0 {
		c.DangerousExtensions = o.DangerousExtensions
	}
	if len(o.TriggerKeywords) > 0 {
		c.TriggerKeywords = o.TriggerKeywords
	}
	if len(o.SuspiciousUsernames) > 0 {
		c.SuspiciousUsernames = o.SuspiciousUsernames
	}
	if len(o.PatternCatalogs) > 0 {
		c.PatternCatalogs = o.PatternCatalogs
	}
}
