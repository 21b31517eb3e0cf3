package repomanager

import (
	"context"
	"database/sql"

	"github.com/hfiles/backend/internal/dbx"
	"github.com/hfiles/backend/internal/server/repositories/filerecords"
	"github.com/hfiles/backend/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repository calls inside one transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	FileRecords(db dbx.DBTX) filerecords.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
