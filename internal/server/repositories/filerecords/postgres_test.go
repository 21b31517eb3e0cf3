package filerecords

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hfiles/backend/internal/common"
	"github.com/hfiles/backend/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uploadedAt := time.Now().UTC()

	q := `(?s)^INSERT\s+INTO\s+file_records\b.*RETURNING\s+id`

	mock.ExpectQuery(q).
		WithArgs(int64(7), "blood work", "Blood Report", "http://blobs/medical/x.pdf", uploadedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Insert(context.Background(), &models.FileRecord{
		OwnerUserID: 7,
		FileName:    "blood work",
		FileType:    "Blood Report",
		BlobURL:     "http://blobs/medical/x.pdf",
		UploadedAt:  uploadedAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("want id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+file_records`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.FileRecord{OwnerUserID: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+file_records\s+WHERE\s+id`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestFind_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uploadedAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "owner_user_id", "file_name", "file_type", "blob_url", "uploaded_at"}).
		AddRow(int64(5), int64(7), "mri", "MRI Scan", "http://blobs/medical/y.png", uploadedAt)

	mock.ExpectQuery(`SELECT\s+.*FROM\s+file_records\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	rec, err := repo.Find(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OwnerUserID != 7 || rec.FileType != "MRI Scan" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestListByOwner_OrderedQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newer := time.Now().UTC()
	older := newer.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "owner_user_id", "file_name", "file_type", "blob_url", "uploaded_at"}).
		AddRow(int64(2), int64(7), "b", "X-Ray", "http://blobs/medical/b.png", newer).
		AddRow(int64(1), int64(7), "a", "Lab Report", "http://blobs/medical/a.pdf", older)

	// The ordering clause is part of the contract, so assert it is present.
	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+file_records\s+WHERE\s+owner_user_id\s*=\s*\$1\s+ORDER\s+BY\s+uploaded_at\s+DESC`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	result, err := repo.ListByOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("want 2 records, got %d", len(result))
	}
	if result[0].ID != 2 || result[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", result)
	}
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "owner_user_id", "file_name", "file_type", "blob_url", "uploaded_at"})

	mock.ExpectQuery(`SELECT\s+.*FROM\s+file_records`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	result, err := repo.ListByOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("want empty result, got %d", len(result))
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+file_records\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+file_records\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 5)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
