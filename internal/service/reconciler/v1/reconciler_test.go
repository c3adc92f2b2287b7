package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
	"github.com/localan/shortener/internal/mocks"
	"github.com/localan/shortener/internal/service/modellink"
	"github.com/localan/shortener/internal/storage/inmemory"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

func initTestReconciler(t *testing.T, st LinkStorage) (*Reconciler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redirects.json")
	rec, err := InitReconciler(st, &config.SyncConfig{ManifestPath: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("could not initialize reconciler: %v", err)
	}
	return rec, path
}

func readManifestFile(t *testing.T, path string) modellink.Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read manifest: %v", err)
	}
	var manifest modellink.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("could not parse manifest: %v", err)
	}
	return manifest
}

func TestReconcileExportsEligibleSorted(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/draft", Destination: "https://draft.example", Status: modelstorage.StatusDraft})
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/zulu", Destination: "https://z.example", Status: modelstorage.StatusPublished})
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/alpha", Destination: "https://a.example", Status: modelstorage.StatusSynced})

	rec, path := initTestReconciler(t, st)
	count, err := rec.Reconcile(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	manifest := readManifestFile(t, path)
	assert.Len(t, manifest.Redirects, 2)
	assert.Equal(t, "/alpha", manifest.Redirects[0].Source)
	assert.Equal(t, "/zulu", manifest.Redirects[1].Source)
	for _, redirect := range manifest.Redirects {
		assert.False(t, redirect.Permanent)
	}
}

func TestReconcileMarksPublishedSynced(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	published, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished})
	draft, _ := st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusDraft})

	rec, _ := initTestReconciler(t, st)
	_, err := rec.Reconcile(ctx)
	assert.NoError(t, err)

	got, _ := st.Get(ctx, published.ID)
	assert.Equal(t, modelstorage.StatusSynced, got.Status)
	got, _ = st.Get(ctx, draft.ID)
	assert.Equal(t, modelstorage.StatusDraft, got.Status)
}

func TestReconcileIdempotent(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished})
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusSynced})

	rec, path := initTestReconciler(t, st)
	count, err := rec.Reconcile(ctx)
	assert.NoError(t, err)
	first, err := os.ReadFile(path)
	assert.NoError(t, err)

	countAgain, err := rec.Reconcile(ctx)
	assert.NoError(t, err)
	second, err := os.ReadFile(path)
	assert.NoError(t, err)

	assert.Equal(t, count, countAgain)
	assert.Equal(t, first, second)
}

func TestReconcileEmptyStore(t *testing.T) {
	rec, path := initTestReconciler(t, inmemory.InitStorage())
	count, err := rec.Reconcile(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	manifest := readManifestFile(t, path)
	assert.NotNil(t, manifest.Redirects)
	assert.Len(t, manifest.Redirects, 0)
}

func TestPreviewWritesNothing(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	published, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished})

	rec, path := initTestReconciler(t, st)
	manifest, err := rec.Preview(ctx)
	assert.NoError(t, err)
	assert.Len(t, manifest.Redirects, 1)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	got, _ := st.Get(ctx, published.ID)
	assert.Equal(t, modelstorage.StatusPublished, got.Status)
}

func TestReconcileReadFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockLinkStorage(ctrl)
	st.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("store down"))

	rec, path := initTestReconciler(t, st)
	_, err := rec.Reconcile(context.Background())
	assert.Error(t, err)

	// no manifest written, no status transition attempted
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReconcileWriteFailureSkipsMarkSynced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockLinkStorage(ctrl)
	st.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return([]modelstorage.Link{
		{ID: 1, Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished},
	}, nil)

	path := filepath.Join(t.TempDir(), "absent-dir", "redirects.json")
	rec, err := InitReconciler(st, &config.SyncConfig{ManifestPath: path}, zap.NewNop())
	assert.NoError(t, err)

	_, err = rec.Reconcile(context.Background())
	assert.Error(t, err)
}
