package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"multistore/pkg/models"
	"multistore/pkg/store"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	s := NewUserStore(":memory:", zap.NewNop())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, models.UserInput{Name: "Dave", Email: "dave@x.com", Phone: "555"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	n, ok := u.ID.Int()
	if !ok || n <= 0 {
		t.Fatalf("expected positive integer id, got %v", u.ID)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := s.Get(ctx, u.ID.String())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "Dave" || got.Email != "dave@x.com" || got.Phone != "555" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users, err := s.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", users)
	}

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, models.UserInput{Name: name, Email: name + "@x.com", Phone: "1"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	users, err = s.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].Name != "third" || users[2].Name != "first" {
		t.Errorf("expected newest first, got %s..%s", users[0].Name, users[2].Name)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, models.UserInput{Name: "Old", Email: "old@x.com", Phone: "1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	in := models.UserInput{Name: "New", Email: "new@x.com", Phone: "2"}
	updated, err := s.Update(ctx, u.ID.String(), in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.ID != u.ID {
		t.Errorf("id changed: %v -> %v", u.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", u.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(u.UpdatedAt) {
		t.Errorf("expected updatedAt to move forward")
	}

	// Same input again leaves the stored values unchanged.
	again, err := s.Update(ctx, u.ID.String(), in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.Name != updated.Name || again.Email != updated.Email || again.Phone != updated.Phone {
		t.Errorf("second update changed values: %+v", again)
	}

	if _, err := s.Update(ctx, "999", in); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, models.UserInput{Name: "Gone", Email: "gone@x.com", Phone: "1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, u.ID.String()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := s.Get(ctx, u.ID.String()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, u.ID.String()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMalformedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("get %q: expected ErrNotFound, got %v", id, err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("delete %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestNotReady_FailsFast(t *testing.T) {
	s := NewUserStore(":memory:", zap.NewNop())

	if _, err := s.Create(context.Background(), models.UserInput{Name: "A", Email: "a", Phone: "1"}); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := s.Get(context.Background(), "1"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.db")
	s := NewUserStore(path, zap.NewNop())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if !s.Ready() {
		t.Fatal("expected store to be ready")
	}
	if _, err := s.Create(context.Background(), models.UserInput{Name: "F", Email: "f@x.com", Phone: "1"}); err != nil {
		t.Fatalf("create on file db: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.Ready() {
		t.Error("expected store not ready after Close")
	}
}
