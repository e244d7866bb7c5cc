// Package mongo implements the persistence gateway on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"kanban/internal/storage"
)

const (
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

// Options configures the connection.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Store holds the client and the two collections.
type Store struct {
	client   *mongo.Client
	projects *mongo.Collection
	tasks    *mongo.Collection
	logger   *slog.Logger
}

var _ storage.Gateway = (*Store)(nil)

// Open connects, verifies the server is reachable and ensures indexes exist.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("empty mongodb uri")
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("empty mongodb database")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		client:   client,
		projects: db.Collection(projectsCollection),
		tasks:    db.Collection(tasksCollection),
		logger:   logger,
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongodb store ready", slog.String("database", opts.Database))
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return wrap("ping", err)
	}
	return nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.projects.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create project indexes: %w", err)
	}

	_, err = s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "priority", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

// wrap maps driver errors onto the storage sentinels.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.Is(err, mongo.ErrClientDisconnected), errors.As(err, new(topology.ServerSelectionError)):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// objectID converts an id already validated by the caller. Malformed ids can
// not match any document, so they map to the zero ObjectID.
func objectID(id string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		out = append(out, objectID(id))
	}
	return out
}

func findOptions(order storage.Sort, fields map[storage.SortField]string) *options.FindOptions {
	field, ok := fields[order.Field]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if order.Descending {
		dir = -1
	}
	return options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
}
