package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/storage/inmemory"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

func writeFallback(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redirects.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("could not write fallback manifest: %v", err)
	}
	return path
}

func TestResolveFromStore(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	_, err := st.Create(ctx, modelstorage.Link{Source: "/docs", Destination: "https://example.com/docs", Status: modelstorage.StatusDraft})
	assert.NoError(t, err)

	res, err := InitResolver(st, "", zap.NewNop())
	assert.NoError(t, err)

	destination, ok := res.Resolve(ctx, "/docs")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/docs", destination)

	// a missing leading slash is normalized before lookup
	destination, ok = res.Resolve(ctx, "docs")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/docs", destination)
}

func TestResolveFallback(t *testing.T) {
	st := inmemory.InitStorage()
	path := writeFallback(t, `{"redirects":[{"source":"/legacy","destination":"https://legacy.example","permanent":false}]}`)

	res, err := InitResolver(st, path, zap.NewNop())
	assert.NoError(t, err)

	destination, ok := res.Resolve(context.Background(), "/legacy")
	assert.True(t, ok)
	assert.Equal(t, "https://legacy.example", destination)
}

func TestResolveStoreShadowsFallback(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	_, err := st.Create(ctx, modelstorage.Link{Source: "/docs", Destination: "https://fresh.example", Status: modelstorage.StatusDraft})
	assert.NoError(t, err)
	path := writeFallback(t, `{"redirects":[{"source":"/docs","destination":"https://stale.example","permanent":false}]}`)

	res, err := InitResolver(st, path, zap.NewNop())
	assert.NoError(t, err)

	destination, ok := res.Resolve(ctx, "/docs")
	assert.True(t, ok)
	assert.Equal(t, "https://fresh.example", destination)
}

func TestResolveAfterDelete(t *testing.T) {
	st := inmemory.InitStorage()
	ctx := context.Background()
	link, err := st.Create(ctx, modelstorage.Link{Source: "/gone", Destination: "https://gone.example", Status: modelstorage.StatusDraft})
	assert.NoError(t, err)

	res, err := InitResolver(st, "", zap.NewNop())
	assert.NoError(t, err)

	_, ok := res.Resolve(ctx, "/gone")
	assert.True(t, ok)

	removed, err := st.Delete(ctx, link.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	_, ok = res.Resolve(ctx, "/gone")
	assert.False(t, ok)
}

func TestResolveMiss(t *testing.T) {
	st := inmemory.InitStorage()
	res, err := InitResolver(st, "", zap.NewNop())
	assert.NoError(t, err)

	_, ok := res.Resolve(context.Background(), "/missing")
	assert.False(t, ok)
}

func TestInitResolverBadManifest(t *testing.T) {
	st := inmemory.InitStorage()
	path := writeFallback(t, `{not json`)
	_, err := InitResolver(st, path, zap.NewNop())
	assert.Error(t, err)

	_, err = InitResolver(st, filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	assert.Error(t, err)
}
