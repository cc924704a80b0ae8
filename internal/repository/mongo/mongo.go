// Package mongo implements repository.Repository on MongoDB. Uniqueness of
// emails and of (job, applicant) pairs is enforced by unique indexes created
// in EnsureIndexes.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection        = "users"
	jobsCollection         = "jobs"
	applicationsCollection = "applications"
)

type Repository struct {
	cfg    *config.Config
	client *mongo.Client

	users        *mongo.Collection
	jobs         *mongo.Collection
	applications *mongo.Collection
}

var _ repository.Repository = (*Repository)(nil)

func New(cfg *config.Config, client *mongo.Client) *Repository {
	db := client.Database(cfg.Database.Name)
	return &Repository{
		cfg:          cfg,
		client:       client,
		users:        db.Collection(usersCollection),
		jobs:         db.Collection(jobsCollection),
		applications: db.Collection(applicationsCollection),
	}
}

// Connect opens a client and pings the primary.
func Connect(cfg *config.Config) (*mongo.Client, error) {
	timeout := time.Duration(cfg.Database.ConnectTimeout) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.Database.DSN).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout).
		SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns)).
		SetMaxConnIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created"),
		},
	})
	if err != nil {
		return err
	}

	_, err = r.jobs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employer_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_employer_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created"),
		},
		{
			Keys:    bson.D{{Key: "skills", Value: 1}},
			Options: options.Index().SetName("by_skills"),
		},
	})
	if err != nil {
		return err
	}

	_, err = r.applications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetName("uniq_job_applicant").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_applicant_created"),
		},
	})
	return err
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.client.Ping(ctx, nil)
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *Repository) exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
