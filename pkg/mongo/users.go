package mongo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"multistore/pkg/config"
	"multistore/pkg/models"
	"multistore/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Backend is the path segment the document store is mounted under.
const Backend = "mongo"

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:        models.StringID(d.ID.Hex()),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// UserStore keeps users in a MongoDB collection. Mongo may be absent at
// startup; the store then stays not ready and every call fails fast.
type UserStore struct {
	cfg    config.MongoConfig
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.Logger
	ready  atomic.Bool
}

func NewUserStore(cfg config.MongoConfig, log *zap.Logger) *UserStore {
	return &UserStore{cfg: cfg, log: log.With(zap.String("backend", Backend))}
}

// NewUserStoreFromCollection wraps an existing collection and reports ready.
func NewUserStoreFromCollection(coll *mongo.Collection, log *zap.Logger) *UserStore {
	s := &UserStore{coll: coll, log: log.With(zap.String("backend", Backend))}
	s.ready.Store(true)
	return s
}

func (s *UserStore) Name() string { return Backend }

func (s *UserStore) Ready() bool { return s.ready.Load() }

func (s *UserStore) Init(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	client, err := Connect(ctx, s.cfg.URI, s.cfg.ConnectTimeout, s.log)
	if err != nil {
		return store.Wrap(Backend, "connect", err)
	}
	coll, err := EnsureCollection(ctx, client.Database(s.cfg.Database))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return store.Wrap(Backend, "ensure collection", err)
	}

	s.client = client
	s.coll = coll
	s.ready.Store(true)
	s.log.Info("users collection ready", zap.String("database", s.cfg.Database))
	return nil
}

func (s *UserStore) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}

	// BSON dates carry millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, store.Wrap(Backend, "create", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, store.Wrap(Backend, "list", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, store.Wrap(Backend, "list", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, wrapResult("get", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (s *UserStore) Update(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	if !s.Ready() {
		return nil, store.Unavailable(Backend)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":      in.Name,
		"email":     in.Email,
		"phone":     in.Phone,
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, wrapResult("update", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if !s.Ready() {
		return store.Unavailable(Backend)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return store.Wrap(Backend, "delete", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) Close() error {
	s.ready.Store(false)
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func wrapResult(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return store.Wrap(Backend, op, err)
}
