// Package route holds the declarative page table of the application and
// resolves concrete request paths to their descriptors.
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

var (
	ErrInvalidPath   = errors.New("route path must start with /")
	ErrDuplicatePath = errors.New("duplicate route path")
	ErrDuplicateName = errors.New("duplicate route name")
)

// Meta is the metadata attached to a route at table definition time.
type Meta struct {
	// RequiresAuth is nil when the route does not say either way.
	RequiresAuth *bool  `yaml:"requiresAuth,omitempty"`
	Title        string `yaml:"title,omitempty"`
}

// Descriptor is one entry of the route table. Path uses chi pattern syntax,
// e.g. /paste/view/{uuid}.
type Descriptor struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Meta Meta   `yaml:"meta"`
}

// Table is immutable once built and safe for concurrent lookups.
type Table struct {
	descriptors []Descriptor
	byPattern   map[string]int
	byName      map[string]int
	mux         *chi.Mux
}

func NewTable(descriptors []Descriptor) (*Table, error) {
	t := &Table{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byPattern:   make(map[string]int, len(descriptors)),
		byName:      make(map[string]int, len(descriptors)),
		mux:         chi.NewMux(),
	}

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, d := range descriptors {
		if !strings.HasPrefix(d.Path, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, d.Path)
		}
		if _, ok := t.byPattern[d.Path]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, d.Path)
		}
		if d.Name != "" {
			if _, ok := t.byName[d.Name]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
			}
			t.byName[d.Name] = len(t.descriptors)
		}

		t.byPattern[d.Path] = len(t.descriptors)
		t.descriptors = append(t.descriptors, d)
		t.mux.Method(http.MethodGet, d.Path, noop)
	}

	return t, nil
}

// Lookup resolves a concrete path, such as /paste/view/abc, to the
// descriptor whose pattern matches it.
func (t *Table) Lookup(path string) (Descriptor, bool) {
	if path == "" {
		path = "/"
	}

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) || len(rctx.RoutePatterns) == 0 {
		return Descriptor{}, false
	}

	i, ok := t.byPattern[rctx.RoutePatterns[len(rctx.RoutePatterns)-1]]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[i], true
}

func (t *Table) ByName(name string) (Descriptor, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[i], true
}

// All returns a copy of the descriptors in definition order.
func (t *Table) All() []Descriptor {
	out := make([]Descriptor, len(t.descriptors))
	copy(out, t.descriptors)
	return out
}

// Bool returns a pointer to v, for building Meta literals.
func Bool(v bool) *bool {
	return &v
}
