package memory_test

import (
	"testing"

	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/memory"
	"github.com/hirehub-dev/hirehub/backend/internal/repository/repositorytest"
)

func TestRepository(t *testing.T) {
	repositorytest.Run(t, func(t *testing.T) repository.Repository {
		return memory.New()
	})
}
