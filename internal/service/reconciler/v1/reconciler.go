// Package reconciler implements manifest reconciliation: the database to
// static-config sync consumed by the edge router.
package reconciler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
	serviceErrors "github.com/localan/shortener/internal/service/errors"
	"github.com/localan/shortener/internal/service/modellink"
	"github.com/localan/shortener/internal/service/reconciler"
	"github.com/localan/shortener/internal/storage"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

// Check interface implementation explicitly
var (
	_ reconciler.Processor = (*Reconciler)(nil)
)

// LinkStorage narrows the storage surface the reconciler needs.
type LinkStorage interface {
	storage.LinkLister
	storage.SyncMarker
}

// Reconciler struct defines data structure handling and provides support
// for adding new implementations.
type Reconciler struct {
	linkStorage LinkStorage
	cfg         *config.SyncConfig
	log         *zap.Logger
}

// InitReconciler initializes a Reconciler object and sets its attributes.
func InitReconciler(s LinkStorage, cfg *config.SyncConfig, log *zap.Logger) (*Reconciler, error) {
	if s == nil {
		return nil, &serviceErrors.NilDependencyError{Msg: "nil storage was passed to service initializer"}
	}
	return &Reconciler{linkStorage: s, cfg: cfg, log: log}, nil
}

// Preview builds the manifest from the currently eligible links without
// writing it.
func (r *Reconciler) Preview(ctx context.Context) (modellink.Manifest, error) {
	manifest, _, err := r.build(ctx)
	return manifest, err
}

// Reconcile reads all published and synced links, replaces the manifest
// wholesale with a deterministic rendering, and on a successful write moves
// the exported published links to synced. The read-then-write window is
// not transactional: a concurrent approve or delete can leave the manifest
// stale until the next run.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	manifest, publishedIDs, err := r.build(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.writeManifest(manifest); err != nil {
		return 0, err
	}
	if err := r.linkStorage.MarkSynced(ctx, publishedIDs); err != nil {
		return 0, err
	}
	r.log.Info("manifest reconciled",
		zap.Int("redirects", len(manifest.Redirects)),
		zap.Int("newly_synced", len(publishedIDs)),
		zap.String("path", r.cfg.ManifestPath))
	return len(manifest.Redirects), nil
}

// build reads the eligible links and renders them as manifest entries
// sorted by source for stable diffs. It also collects the ids of links
// still in the published status, which become synced after a successful
// write.
func (r *Reconciler) build(ctx context.Context) (modellink.Manifest, []int64, error) {
	records, err := r.linkStorage.List(ctx, modelstorage.EligibleStatuses()...)
	if err != nil {
		return modellink.Manifest{}, nil, err
	}
	manifest := modellink.Manifest{Redirects: make([]modellink.Redirect, 0, len(records))}
	var publishedIDs []int64
	for _, record := range records {
		manifest.Redirects = append(manifest.Redirects, modellink.Redirect{
			Source:      record.Source,
			Destination: record.Destination,
			Permanent:   false,
		})
		if record.Status == modelstorage.StatusPublished {
			publishedIDs = append(publishedIDs, record.ID)
		}
	}
	sort.Slice(manifest.Redirects, func(i, j int) bool {
		return manifest.Redirects[i].Source < manifest.Redirects[j].Source
	})
	return manifest, publishedIDs, nil
}

// writeManifest persists the manifest atomically: the rendering goes to a
// temp file in the target directory first and is renamed over the manifest
// path, so a concurrent reader never observes a partial write.
func (r *Reconciler) writeManifest(manifest modellink.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	dir := filepath.Dir(r.cfg.ManifestPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.cfg.ManifestPath)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.cfg.ManifestPath); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
