package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync/atomic"

	"multistore/pkg/config"
	"multistore/pkg/models"
	"multistore/pkg/store"

	"go.uber.org/zap"
)

// Backend is the path segment the relational store is mounted under.
const Backend = "postgres"

const userColumns = "id, name, email, phone, created_at, updated_at"

// UserStore keeps users in a PostgreSQL table behind a bounded pool.
type UserStore struct {
	cfg   config.PostgresConfig
	db    *sql.DB
	log   *zap.Logger
	ready atomic.Bool
}

// NewUserStore returns a store that connects on Init.
func NewUserStore(cfg config.PostgresConfig, log *zap.Logger) *UserStore {
	return &UserStore{cfg: cfg, log: log.With(zap.String("backend", Backend))}
}

// NewUserStoreWithDB wraps an already open pool and reports ready.
func NewUserStoreWithDB(db *sql.DB, log *zap.Logger) *UserStore {
	s := &UserStore{db: db, log: log.With(zap.String("backend", Backend))}
	s.ready.Store(true)
	return s
}

func (s *UserStore) Name() string { return Backend }

func (s *UserStore) Ready() bool { return s.ready.Load() }

func (s *UserStore) Init(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	if s.db == nil {
		db, err := Connect(ctx, s.cfg.DSN(), s.cfg.ConnectAttempts, s.cfg.MaxConns, s.log)
		if err != nil {
			return store.Wrap(Backend, "connect", err)
		}
		s.db = db
	}

	if err := RunMigrations(ctx, s.db); err != nil {
		return store.Wrap(Backend, "migrate", err)
	}

	s.ready.Store(true)
	s.log.Info("users table ready")
	return nil
}

func (s *UserStore) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}

	row := s.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, phone) VALUES ($1, $2, $3) RETURNING "+userColumns,
		in.Name, in.Email, in.Phone,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, store.Wrap(Backend, "create", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, store.Wrap(Backend, "list", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, store.Wrap(Backend, "list", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(Backend, "list", err)
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	key, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", key)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap(Backend, "get", err)
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	key, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		"UPDATE users SET name = $1, email = $2, phone = $3, updated_at = NOW() WHERE id = $4 RETURNING "+userColumns,
		in.Name, in.Email, in.Phone, key,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap(Backend, "update", err)
	}
	return u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if !s.Ready() {
		return store.Unavailable(Backend)
	}
	key, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", key)
	if err != nil {
		return store.Wrap(Backend, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Wrap(Backend, "delete", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) Close() error {
	s.ready.Store(false)
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u  models.User
		id int64
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = models.IntID(id)
	return &u, nil
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
