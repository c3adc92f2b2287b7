package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	storageErrors "github.com/localan/shortener/internal/storage/errors"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

func TestCreateAndGet(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	link, err := st.Create(ctx, modelstorage.Link{
		Source:      "/docs",
		Destination: "https://example.com/docs",
		Status:      modelstorage.StatusDraft,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), link.ID)
	assert.False(t, link.CreatedAt.IsZero())

	got, err := st.Get(ctx, link.ID)
	assert.NoError(t, err)
	assert.Equal(t, "/docs", got.Source)

	bySource, err := st.GetBySource(ctx, "/docs")
	assert.NoError(t, err)
	assert.Equal(t, link.ID, bySource.ID)
}

func TestCreateDuplicateSource(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	_, err := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	assert.NoError(t, err)
	_, err = st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://b.example", Status: modelstorage.StatusDraft})
	var alreadyExists *storageErrors.AlreadyExistsError
	assert.True(t, errors.As(err, &alreadyExists))
}

func TestGetNotFound(t *testing.T) {
	st := InitStorage()
	_, err := st.Get(context.Background(), 42)
	var notFound *storageErrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	_, err = st.GetBySource(context.Background(), "/missing")
	assert.True(t, errors.As(err, &notFound))
}

func TestListFiltersAndOrder(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	second, _ := st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusPublished})
	third, _ := st.Create(ctx, modelstorage.Link{Source: "/c", Destination: "https://c.example", Status: modelstorage.StatusSynced})

	all, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	// newest first, ties broken by id
	assert.Equal(t, third.ID, all[0].ID)

	eligible, err := st.List(ctx, modelstorage.StatusPublished, modelstorage.StatusSynced)
	assert.NoError(t, err)
	assert.Len(t, eligible, 2)
	for _, link := range eligible {
		assert.NotEqual(t, modelstorage.StatusDraft, link.Status)
	}
	_ = second
}

func TestUpdateKeepsStatusWhenEmpty(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	link, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusPublished})
	updated, err := st.Update(ctx, modelstorage.Link{ID: link.ID, Source: "/a", Destination: "https://new.example"})
	assert.NoError(t, err)
	assert.Equal(t, modelstorage.StatusPublished, updated.Status)
	assert.Equal(t, "https://new.example", updated.Destination)

	updated, err = st.Update(ctx, modelstorage.Link{ID: link.ID, Source: "/a", Destination: "https://new.example", Status: modelstorage.StatusSynced})
	assert.NoError(t, err)
	assert.Equal(t, modelstorage.StatusSynced, updated.Status)
}

func TestUpdateRejectsTakenSource(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	_, _ = st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	link, _ := st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusDraft})
	_, err := st.Update(ctx, modelstorage.Link{ID: link.ID, Source: "/a", Destination: "https://b.example"})
	var alreadyExists *storageErrors.AlreadyExistsError
	assert.True(t, errors.As(err, &alreadyExists))
}

func TestDelete(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	link, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	removed, err := st.Delete(ctx, link.ID)
	assert.NoError(t, err)
	assert.True(t, removed)
	removed, err = st.Delete(ctx, link.ID)
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestMarkSyncedOnlyPublished(t *testing.T) {
	st := InitStorage()
	ctx := context.Background()
	draft, _ := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	published, _ := st.Create(ctx, modelstorage.Link{Source: "/b", Destination: "https://b.example", Status: modelstorage.StatusPublished})
	err := st.MarkSynced(ctx, []int64{draft.ID, published.ID, 999})
	assert.NoError(t, err)

	got, _ := st.Get(ctx, draft.ID)
	assert.Equal(t, modelstorage.StatusDraft, got.Status)
	got, _ = st.Get(ctx, published.ID)
	assert.Equal(t, modelstorage.StatusSynced, got.Status)

	// re-marking is a no-op
	err = st.MarkSynced(ctx, []int64{published.ID})
	assert.NoError(t, err)
	got, _ = st.Get(ctx, published.ID)
	assert.Equal(t, modelstorage.StatusSynced, got.Status)
}

func TestExpiredContext(t *testing.T) {
	st := InitStorage()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	_, err := st.Create(ctx, modelstorage.Link{Source: "/a", Destination: "https://a.example", Status: modelstorage.StatusDraft})
	var ctxExceeded *storageErrors.ContextTimeoutExceededError
	assert.True(t, errors.As(err, &ctxExceeded))
	_, err = st.List(ctx)
	assert.True(t, errors.As(err, &ctxExceeded))
}
