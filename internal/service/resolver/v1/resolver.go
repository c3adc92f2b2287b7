// Package resolver implements redirect resolution against the link store
// with a static fallback manifest.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/localan/shortener/internal/service/modellink"
	"github.com/localan/shortener/internal/service/resolver"
	"github.com/localan/shortener/internal/storage"
	storageErrors "github.com/localan/shortener/internal/storage/errors"
)

// Check interface implementation explicitly
var (
	_ resolver.Resolver = (*Resolver)(nil)
)

// Resolver struct defines data structure handling and provides support for
// adding new implementations.
type Resolver struct {
	linkStorage storage.LinkGetter
	fallback    map[string]string
	log         *zap.Logger
}

// InitResolver initializes a Resolver object and loads the static fallback
// manifest when a path is configured. Fallback entries are read once at
// startup and are read-only from the resolver's perspective.
func InitResolver(s storage.LinkGetter, fallbackPath string, log *zap.Logger) (*Resolver, error) {
	fallback := make(map[string]string)
	if fallbackPath != "" {
		manifest, err := readManifest(fallbackPath)
		if err != nil {
			return nil, err
		}
		for _, redirect := range manifest.Redirects {
			fallback[redirect.Source] = redirect.Destination
		}
	}
	return &Resolver{linkStorage: s, fallback: fallback, log: log}, nil
}

// Resolve performs an exact-match lookup of the request path against the
// store, falling back to the static manifest on a miss. Store
// unavailability is logged and reported as a miss rather than propagated.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	record, err := r.linkStorage.GetBySource(ctx, path)
	if err == nil {
		return record.Destination, true
	}
	var notFound *storageErrors.NotFoundError
	if !errors.As(err, &notFound) {
		r.log.Warn("redirect lookup failed, treating as not found", zap.String("path", path), zap.Error(err))
	}
	destination, ok := r.fallback[path]
	return destination, ok
}

func readManifest(path string) (modellink.Manifest, error) {
	var manifest modellink.Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest, err
	}
	err = json.Unmarshal(data, &manifest)
	return manifest, err
}
