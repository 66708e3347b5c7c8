package sqlite

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"multistore/pkg/models"
	"multistore/pkg/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Backend is the path segment the embedded store is mounted under.
const Backend = "sqlite"

// userRow is the users table. There is no DeletedAt: deletes are hard.
type userRow struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Phone     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() models.User {
	return models.User{
		ID:        models.IntID(int64(r.ID)),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// UserStore keeps users in a SQLite file through gorm. Calls run
// synchronously on the request goroutine; SQLite serializes writers.
type UserStore struct {
	dsn   string
	db    *gorm.DB
	log   *zap.Logger
	ready atomic.Bool
}

func NewUserStore(dsn string, log *zap.Logger) *UserStore {
	return &UserStore{dsn: dsn, log: log.With(zap.String("backend", Backend))}
}

func (s *UserStore) Name() string { return Backend }

func (s *UserStore) Ready() bool { return s.ready.Load() }

func (s *UserStore) Init(ctx context.Context) error {
	if s.Ready() {
		return nil
	}
	db, err := Open(s.dsn, s.log)
	if err != nil {
		return store.Wrap(Backend, "open", err)
	}
	s.db = db
	s.ready.Store(true)
	s.log.Info("users table ready", zap.String("dsn", s.dsn))
	return nil
}

func (s *UserStore) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	row := userRow{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, store.Wrap(Backend, "create", err)
	}
	u := row.toModel()
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, store.Wrap(Backend, "list", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toModel())
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, store.Wrap(Backend, "get", err)
	}
	u := row.toModel()
	return &u, nil
}

func (s *UserStore) Update(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, store.Wrap(Backend, "update", err)
	}

	updates := map[string]interface{}{
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	}
	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, store.Wrap(Backend, "update", err)
	}
	// Re-read so the response carries the stored timestamps.
	if row, err = s.find(ctx, id); err != nil {
		return nil, store.Wrap(Backend, "update", err)
	}
	u := row.toModel()
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if !s.Ready() {
		return store.Unavailable(Backend)
	}
	key, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	res := s.db.WithContext(ctx).Delete(&userRow{}, key)
	if res.Error != nil {
		return store.Wrap(Backend, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) Close() error {
	s.ready.Store(false)
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *UserStore) find(ctx context.Context, id string) (*userRow, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	var row userRow
	err := s.db.WithContext(ctx).First(&row, key).Error
	switch {
	case err == nil:
		return &row, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, store.ErrNotFound
	default:
		return nil, err
	}
}

func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
