package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"multistore/pkg/config"
	"multistore/pkg/models"
	"multistore/pkg/store"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

var columns = []string{"id", "name", "email", "phone", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStoreWithDB(db, zap.NewNop()), mock
}

func TestCreate_Success(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, phone) VALUES ($1, $2, $3) RETURNING")).
		WithArgs("Dave", "dave@x.com", "555").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "Dave", "dave@x.com", "555", now, now))

	u, err := s.Create(context.Background(), models.UserInput{Name: "Dave", Email: "dave@x.com", Phone: "555"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n, ok := u.ID.Int(); !ok || n != 7 {
		t.Errorf("expected id 7, got %v", u.ID)
	}
	if u.Name != "Dave" {
		t.Errorf("expected name Dave, got %s", u.Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestCreate_DriverError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("pq: connection reset by peer"))

	_, err := s.Create(context.Background(), models.UserInput{Name: "A", Email: "a@x.com", Phone: "1"})
	var se *store.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *store.Error, got %v", err)
	}
	if err.Error() != "pq: connection reset by peer" {
		t.Errorf("expected raw driver message, got %q", err.Error())
	}
}

func TestList_OrderedAndEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users ORDER BY created_at DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "Two", "two@x.com", "2", now, now).
			AddRow(1, "One", "one@x.com", "1", now.Add(-time.Minute), now))
	mock.ExpectQuery("SELECT .* FROM users ORDER BY").
		WillReturnRows(sqlmock.NewRows(columns))

	users, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(users) != 2 || users[0].Name != "Two" {
		t.Errorf("unexpected users: %+v", users)
	}

	users, err = s.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", users)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(columns))

	if _, err := s.Get(context.Background(), "99"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestGet_MalformedID(t *testing.T) {
	s, mock := newMockStore(t)

	for _, id := range []string{"abc", "0", "-3"} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no queries expected: %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Now().Add(-time.Hour)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = $1, email = $2, phone = $3, updated_at = NOW() WHERE id = $4")).
		WithArgs("New", "new@x.com", "9", int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(3, "New", "new@x.com", "9", created, now))

	u, err := s.Update(context.Background(), "3", models.UserInput{Name: "New", Email: "new@x.com", Phone: "9"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !u.CreatedAt.Equal(created) {
		t.Errorf("createdAt changed: %v", u.CreatedAt)
	}
	if u.Email != "new@x.com" {
		t.Errorf("expected email new@x.com, got %s", u.Email)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs("N", "n@x.com", "1", int64(404)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.Update(context.Background(), "404", models.UserInput{Name: "N", Email: "n@x.com", Phone: "1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), "5"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.Delete(context.Background(), "6"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestNotReady_FailsFast(t *testing.T) {
	s := NewUserStore(config.PostgresConfig{}, zap.NewNop())

	if s.Ready() {
		t.Fatal("expected store not to be ready before Init")
	}
	if _, err := s.List(context.Background()); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Delete(context.Background(), "1"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestInit_RunsMigrationsOnInjectedDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := &UserStore{db: db, log: zap.NewNop()}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !s.Ready() {
		t.Error("expected store to be ready after Init")
	}
	// A second Init is a no-op.
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("expected idempotent Init, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
