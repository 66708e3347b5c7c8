// Package memstore is the process-local user store behind /api/memory.
// Data is lost on restart.
package memstore

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"multistore/pkg/models"
	"multistore/pkg/store"
)

const Backend = "memory"

type UserStore struct {
	mu     sync.RWMutex
	users  []models.User // oldest first
	nextID int64
	ready  atomic.Bool
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) Name() string { return Backend }

func (s *UserStore) Ready() bool { return s.ready.Load() }

func (s *UserStore) Init(context.Context) error {
	s.ready.Store(true)
	return nil
}

func (s *UserStore) Create(_ context.Context, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ids come from a counter, so a deleted id is never handed out again.
	s.nextID++
	now := time.Now().UTC()
	u := models.User{
		ID:        models.IntID(s.nextID),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users = append(s.users, u)
	return &u, nil
}

func (s *UserStore) List(context.Context) ([]models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for i := len(s.users) - 1; i >= 0; i-- {
		out = append(out, s.users[i])
	}
	return out, nil
}

func (s *UserStore) Get(_ context.Context, id string) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *UserStore) Update(_ context.Context, id string, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	u := &s.users[i]
	u.Name = in.Name
	u.Email = in.Email
	u.Phone = in.Phone
	u.UpdatedAt = time.Now().UTC()

	out := *u
	return &out, nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	if !s.Ready() {
		return store.Unavailable(Backend)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}

func (s *UserStore) Close() error {
	s.ready.Store(false)
	return nil
}

// indexOf must be called with mu held.
func (s *UserStore) indexOf(id string) int {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return -1
	}
	for i, u := range s.users {
		if v, _ := u.ID.Int(); v == n {
			return i
		}
	}
	return -1
}
