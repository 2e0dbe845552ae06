// Package bundle stores named script bundles: reusable snippets the shell
// runs with the %bundle command. Bundles live in pluggable storage keyed by
// name; the default store maps names to files on disk.
package bundle

import "context"

// Store persists script bundles. Implementations are stateless — they
// perform I/O on each call without caching.
type Store interface {
	// List returns the names of all stored bundles, sorted.
	List(ctx context.Context) ([]string, error)
	// Load retrieves one bundle by name.
	Load(ctx context.Context, name string) (Bundle, error)
	// Save persists a bundle, creating or overwriting as needed.
	Save(ctx context.Context, b Bundle) error
	// Delete removes a bundle. Missing names are ignored.
	Delete(ctx context.Context, name string) error
}

// Bundle is one named script snippet.
type Bundle struct {
	Name    string
	Snippet string
}
