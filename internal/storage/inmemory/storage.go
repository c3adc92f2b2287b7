// Package inmemory provides data types and methods for in-memory storage
// operations backing tests and local development.
package inmemory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/localan/shortener/internal/storage"
	storageErrors "github.com/localan/shortener/internal/storage/errors"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

// Check interface implementation explicitly
var (
	_ storage.LinkStorage = (*Storage)(nil)
)

// Storage struct defines data structure handling and provides support for
// adding new implementations.
type Storage struct {
	mu     sync.Mutex
	nextID int64
	links  map[int64]modelstorage.Link
}

// InitStorage initializes a Storage object and sets its attributes.
func InitStorage() *Storage {
	return &Storage{
		nextID: 1,
		links:  make(map[int64]modelstorage.Link),
	}
}

// Create stores a new link assigning its surrogate key and timestamps.
func (s *Storage) Create(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	if err := ctx.Err(); err != nil {
		return modelstorage.Link{}, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.links {
		if existing.Source == link.Source {
			return modelstorage.Link{}, &storageErrors.AlreadyExistsError{Source: link.Source}
		}
	}
	now := time.Now().UTC()
	link.ID = s.nextID
	link.CreatedAt = now
	link.UpdatedAt = now
	s.nextID++
	s.links[link.ID] = link
	return link, nil
}

// Get returns a link by its id.
func (s *Storage) Get(ctx context.Context, id int64) (modelstorage.Link, error) {
	if err := ctx.Err(); err != nil {
		return modelstorage.Link{}, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return modelstorage.Link{}, &storageErrors.NotFoundError{Key: formatID(id)}
	}
	return link, nil
}

// GetBySource returns a link by its source path.
func (s *Storage) GetBySource(ctx context.Context, source string) (modelstorage.Link, error) {
	if err := ctx.Err(); err != nil {
		return modelstorage.Link{}, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range s.links {
		if link.Source == source {
			return link, nil
		}
	}
	return modelstorage.Link{}, &storageErrors.NotFoundError{Key: source}
}

// List returns links filtered by status, newest created_at first.
func (s *Storage) List(ctx context.Context, statuses ...string) ([]modelstorage.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	var links []modelstorage.Link
	for _, link := range s.links {
		if len(wanted) == 0 || wanted[link.Status] {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID > links[j].ID
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

// Update replaces a link's content fields refreshing updated_at.
func (s *Storage) Update(ctx context.Context, link modelstorage.Link) (modelstorage.Link, error) {
	if err := ctx.Err(); err != nil {
		return modelstorage.Link{}, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.links[link.ID]
	if !ok {
		return modelstorage.Link{}, &storageErrors.NotFoundError{Key: formatID(link.ID)}
	}
	for id, other := range s.links {
		if id != link.ID && other.Source == link.Source {
			return modelstorage.Link{}, &storageErrors.AlreadyExistsError{Source: link.Source}
		}
	}
	existing.Source = link.Source
	existing.Destination = link.Destination
	existing.Title = link.Title
	existing.Description = link.Description
	if link.Status != "" {
		existing.Status = link.Status
	}
	existing.UpdatedAt = time.Now().UTC()
	s.links[existing.ID] = existing
	return existing, nil
}

// Delete removes a link by id and reports whether a record was removed.
func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[id]
	if !ok {
		return false, nil
	}
	delete(s.links, id)
	return true, nil
}

// MarkSynced moves published links with the given ids to synced.
func (s *Storage) MarkSynced(ctx context.Context, ids []int64) error {
	if err := ctx.Err(); err != nil {
		return &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		link, ok := s.links[id]
		if !ok || link.Status != modelstorage.StatusPublished {
			continue
		}
		link.Status = modelstorage.StatusSynced
		link.UpdatedAt = time.Now().UTC()
		s.links[id] = link
	}
	return nil
}

// PingDB is a mock for DB pinger for in-memory storage handling.
func (s *Storage) PingDB() error {
	return nil
}

// CloseDB is a mock for DB closer for in-memory storage handling.
func (s *Storage) CloseDB() error {
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
