// Package filerecords persists the metadata ledger for uploaded documents.
package filerecords

import (
	"context"

	"github.com/hfiles/backend/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, record *models.FileRecord) (int64, error)
	Find(ctx context.Context, id int64) (*models.FileRecord, error)
	// ListByOwner returns the owner's records ordered newest upload first.
	ListByOwner(ctx context.Context, userID int64) ([]*models.FileRecord, error)
	Delete(ctx context.Context, id int64) error
}
