package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/mongo"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/repositorytest"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// The suite runs against a real server, e.g.
// HIREHUB_TEST_MONGO_URI=mongodb://localhost:27017
func TestRepository(t *testing.T) {
	uri := os.Getenv("HIREHUB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("HIREHUB_TEST_MONGO_URI not set")
	}

	cfg := &config.Config{}
	cfg.Database.DSN = uri
	cfg.Database.Name = "hirehub_test"
	cfg.Database.ConnectTimeout = 10
	cfg.Database.QueryTimeout = 10
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleTime = 60

	client, err := mongo.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := mongo.New(cfg, client)
	require.NoError(t, repo.EnsureIndexes(context.Background()))

	db := client.Database(cfg.Database.Name)
	repositorytest.Run(t, func(t *testing.T) repository.Repository {
		for _, name := range []string{"users", "jobs", "applications"} {
			_, err := db.Collection(name).DeleteMany(context.Background(), bson.M{})
			require.NoError(t, err)
		}
		return repo
	})
}
