package filerecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hfiles/backend/internal/common"
	"github.com/hfiles/backend/internal/dbx"
	"github.com/hfiles/backend/internal/server/models"
)

// PostgresRepository implements the file-record ledger over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, record *models.FileRecord) (int64, error) {
	query :=
		`INSERT INTO file_records (owner_user_id, file_name, file_type, blob_url, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.OwnerUserID, record.FileName, record.FileType, record.BlobURL, record.UploadedAt).
		Scan(&record.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return record.ID, nil
}

func (r *PostgresRepository) Find(ctx context.Context, id int64) (*models.FileRecord, error) {
	query :=
		`SELECT id, owner_user_id, file_name, file_type, blob_url, uploaded_at FROM file_records
		 WHERE id = $1
		 `

	record := &models.FileRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.OwnerUserID, &record.FileName,
		&record.FileType, &record.BlobURL, &record.UploadedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

// ListByOwner returns all records for userID ordered by upload time
// descending.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.FileRecord, error) {
	query :=
		`SELECT id, owner_user_id, file_name, file_type, blob_url, uploaded_at FROM file_records
		 WHERE owner_user_id = $1
		 ORDER BY uploaded_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select file records: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		if err := rows.Scan(&item.ID, &item.OwnerUserID, &item.FileName,
			&item.FileType, &item.BlobURL, &item.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the row with the given id. A missing row is reported as
// common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM file_records WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
