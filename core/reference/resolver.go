// Package reference turns free-text Bible reference strings such as
// "João 3:16-18, 20; 1Pe 2:22" into ordered sequences of single-verse
// references, canonicalizing book names along the way.
package reference

import (
	"context"
	"strings"
	"sync"
)

// CatalogBook is one entry of the book catalog: the canonical
// abbreviation storage uses to identify the book, plus its full name.
type CatalogBook struct {
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
}

// Catalog supplies the book catalog the resolver builds its name index
// from. Implementations typically read the book table from storage.
type Catalog interface {
	ListBooks(ctx context.Context) ([]CatalogBook, error)
}

// CatalogFunc adapts a function to the Catalog interface.
type CatalogFunc func(ctx context.Context) ([]CatalogBook, error)

// ListBooks calls f.
func (f CatalogFunc) ListBooks(ctx context.Context) ([]CatalogBook, error) {
	return f(ctx)
}

// Resolver maps user-typed book names and abbreviations, in any accenting
// or casing, to canonical abbreviations. The name index is built lazily
// on first use and cached for the resolver's lifetime; Reset discards it.
//
// Resolver is safe for concurrent use. The index build is serialized so
// the catalog is fetched exactly once, even under concurrent first access.
type Resolver struct {
	catalog Catalog

	mu    sync.Mutex
	index map[string]string
}

// NewResolver creates a resolver backed by the given catalog. A nil
// catalog means the built-in 66-book table is used directly.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the canonical abbreviation for a raw book name. The
// name is looked up verbatim first, then in normalized form. Unknown
// names yield a NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, rawName string) (string, error) {
	index := r.ensureIndex(ctx)
	name := strings.TrimSpace(rawName)
	if abbrev, ok := index[name]; ok {
		return abbrev, nil
	}
	if abbrev, ok := index[Normalize(name)]; ok {
		return abbrev, nil
	}
	return "", &NotFoundError{BookName: rawName}
}

// Reset discards the cached name index so the next Resolve rebuilds it.
// Callers that change the book catalog at runtime use this to pick up
// the new entries.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.index = nil
	r.mu.Unlock()
}

// ensureIndex returns the name index, building it on first use. A failed
// catalog fetch falls back to the built-in table for this resolver's
// lifetime; it is not retried on the next call.
func (r *Resolver) ensureIndex(ctx context.Context) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index != nil {
		return r.index
	}

	books := fallbackBooks
	if r.catalog != nil {
		if listed, err := r.catalog.ListBooks(ctx); err == nil && len(listed) > 0 {
			books = listed
		}
	}

	index := make(map[string]string, len(books)*3)
	for _, b := range books {
		// Three keys per entry: the exact abbreviation, its normalized
		// form, and the normalized full name. Every canonical
		// abbreviation therefore maps to itself. Later entries win
		// when normalized keys collide.
		index[b.Abbrev] = b.Abbrev
		index[Normalize(b.Abbrev)] = b.Abbrev
		if b.Name != "" {
			index[Normalize(b.Name)] = b.Abbrev
		}
	}
	r.index = index
	return index
}
