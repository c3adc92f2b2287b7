package insqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
	storageErrors "github.com/localan/shortener/internal/storage/errors"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

func initTestStorage(t *testing.T) (*Storage, context.CancelFunc, *sync.WaitGroup) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	cfg := &config.StorageConfig{DatabaseDSN: "file:" + t.TempDir() + "/links.db"}
	st, err := InitStorage(ctx, wg, cfg, zap.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("could not initialize SQLite storage: %v", err)
	}
	return st, cancel, wg
}

func TestSQLiteCreateGetDelete(t *testing.T) {
	st, cancel, wg := initTestStorage(t)
	ctx := context.Background()

	link, err := st.Create(ctx, modelstorage.Link{
		Source:      "/docs",
		Destination: "https://example.com/docs",
		Title:       "Docs",
		Status:      modelstorage.StatusDraft,
	})
	assert.NoError(t, err)
	assert.NotZero(t, link.ID)
	assert.Equal(t, modelstorage.StatusDraft, link.Status)
	assert.False(t, link.CreatedAt.IsZero())

	got, err := st.GetBySource(ctx, "/docs")
	assert.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
	assert.Equal(t, "Docs", got.Title)

	removed, err := st.Delete(ctx, link.ID)
	assert.NoError(t, err)
	assert.True(t, removed)
	removed, err = st.Delete(ctx, link.ID)
	assert.NoError(t, err)
	assert.False(t, removed)

	cancel()
	wg.Wait()
}

func TestSQLiteUniqueViolation(t *testing.T) {
	st, cancel, wg := initTestStorage(t)
	ctx := context.Background()

	_, err := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	assert.NoError(t, err)
	_, err = st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://b.example", Status: modelstorage.StatusDraft})
	var alreadyExists *storageErrors.AlreadyExistsError
	assert.True(t, errors.As(err, &alreadyExists))

	cancel()
	wg.Wait()
}

func TestSQLiteNotFound(t *testing.T) {
	st, cancel, wg := initTestStorage(t)
	ctx := context.Background()

	_, err := st.Get(ctx, 42)
	var notFound *storageErrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	_, err = st.GetBySource(ctx, "/missing")
	assert.True(t, errors.As(err, &notFound))

	cancel()
	wg.Wait()
}

func TestSQLiteListAndMarkSynced(t *testing.T) {
	st, cancel, wg := initTestStorage(t)
	ctx := context.Background()

	draft, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	published, _ := st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusPublished})

	all, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	eligible, err := st.List(ctx, modelstorage.StatusPublished, modelstorage.StatusSynced)
	assert.NoError(t, err)
	assert.Len(t, eligible, 1)
	assert.Equal(t, published.ID, eligible[0].ID)

	err = st.MarkSynced(ctx, []int64{draft.ID, published.ID})
	assert.NoError(t, err)
	got, _ := st.Get(ctx, draft.ID)
	assert.Equal(t, modelstorage.StatusDraft, got.Status)
	got, _ = st.Get(ctx, published.ID)
	assert.Equal(t, modelstorage.StatusSynced, got.Status)

	cancel()
	wg.Wait()
}

func TestSQLiteUpdateKeepsStatusWhenEmpty(t *testing.T) {
	st, cancel, wg := initTestStorage(t)
	ctx := context.Background()

	link, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished})
	updated, err := st.Update(ctx, modelstorage.Link{ID: link.ID, Source: "/a", Destination: "https://new.example"})
	assert.NoError(t, err)
	assert.Equal(t, modelstorage.StatusPublished, updated.Status)
	assert.Equal(t, "https://new.example", updated.Destination)

	cancel()
	wg.Wait()
}
