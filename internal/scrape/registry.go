package scrape

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateScraper is returned when a name is registered twice.
	ErrDuplicateScraper = errors.New("scraper already registered")

	// ErrInvalidScraper is returned for an empty name or a nil scraper.
	ErrInvalidScraper = errors.New("invalid scraper registration")
)

// Registry is an ordered set of named scrapers. It is assembled once at
// startup and only read afterwards.
type Registry struct {
	names    []string
	scrapers map[string]Scraper
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

// Register appends a scraper under name.
func (r *Registry) Register(name string, s Scraper) error {
	if name == "" || s == nil {
		return fmt.Errorf("%w: name %q", ErrInvalidScraper, name)
	}
	if _, exists := r.scrapers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateScraper, name)
	}
	r.names = append(r.names, name)
	r.scrapers[name] = s
	return nil
}

// MustRegister is Register for static setup code; it panics on error.
func (r *Registry) MustRegister(name string, s Scraper) {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
}

// Names returns scraper names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Get returns the scraper registered under name.
func (r *Registry) Get(name string) (Scraper, bool) {
	s, ok := r.scrapers[name]
	return s, ok
}

// Len returns the number of registered scrapers.
func (r *Registry) Len() int {
	return len(r.names)
}
