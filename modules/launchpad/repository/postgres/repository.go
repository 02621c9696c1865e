package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/orbit-network/launchpad-engine/internal/postgres"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
)

// compile-time check
var _ datagateway.LaunchpadDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries postgres.Queryable
	tx      pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: db,
	}
}
