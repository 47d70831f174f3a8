//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"cardeval/internal/validator/store"
	"cardeval/pkg/testutil/containers"
)

type PostgresDirectorySuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	directory *store.PostgresDirectory
}

func TestPostgresDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDirectorySuite))
}

func (s *PostgresDirectorySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.directory = store.NewPostgresDirectory(s.postgres.DB)
}

func (s *PostgresDirectorySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "frequent_flyer_members"))
}

func (s *PostgresDirectorySuite) TestLookup() {
	ctx := context.Background()

	active, err := s.directory.Lookup(ctx, "AB123")
	s.Require().NoError(err)
	s.False(active, "unknown numbers are not valid")

	s.Require().NoError(s.directory.Upsert(ctx, "AB123", true))
	active, err = s.directory.Lookup(ctx, "AB123")
	s.Require().NoError(err)
	s.True(active)

	s.Require().NoError(s.directory.Upsert(ctx, "AB123", false))
	active, err = s.directory.Lookup(ctx, "AB123")
	s.Require().NoError(err)
	s.False(active, "deactivated members are not valid")
}
