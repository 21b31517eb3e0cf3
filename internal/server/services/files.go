package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hfiles/backend/internal/common"
	"github.com/hfiles/backend/internal/logging"
	"github.com/hfiles/backend/internal/server/blobstore"
	"github.com/hfiles/backend/internal/server/models"
	"github.com/hfiles/backend/internal/server/repositories/repomanager"
)

// medicalNamespace prefixes every document blob key.
const medicalNamespace = "medical"

// FileService orchestrates the dual-write lifecycle of medical documents:
// a metadata row in the ledger plus a binary object in the blob store.
//
// There is no cross-store transaction, so the two writes are ordered to keep
// the read path safe: the blob is written before the ledger row on upload, and
// the ledger row is removed after the blob delete attempt on delete. The
// failure direction this picks — an orphaned blob rather than a dangling
// row — only wastes storage, never breaks a read.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "file_service"),
	}
}

// Upload validates the request, writes the blob, then inserts the ledger row.
// Validation failures leave no side effects. A blob write failure aborts
// before the ledger insert. A ledger insert failure after a successful blob
// write leaves an orphaned blob, which is logged and surfaced but not rolled
// back, since the compensating delete cannot be guaranteed to succeed either.
func (s *FileService) Upload(ctx context.Context, userID int64, fileType, fileName string, body io.Reader, origName, contentType string) (int64, error) {

	if fileType == "" || fileName == "" {
		return 0, fmt.Errorf("%w: file type and name are required", common.ErrorValidation)
	}
	if !isAllowedFileType(fileType) {
		return 0, fmt.Errorf("%w: invalid file type", common.ErrorValidation)
	}
	ext := fileExt(origName)
	if !documentExtensions[ext] {
		return 0, fmt.Errorf("%w: invalid file format, only PDFs and images allowed", common.ErrorValidation)
	}

	key := makeObjectKey(medicalNamespace, userID, ext)

	locator, err := s.blobs.Put(ctx, key, body, contentType)
	if err != nil {
		s.logger.Error(ctx, "blob upload failed", "key", key, "error", err.Error())
		return 0, fmt.Errorf("%w: blob upload failed", common.ErrorStorageUnavailable)
	}

	record := &models.FileRecord{
		OwnerUserID: userID,
		FileName:    fileName,
		FileType:    fileType,
		BlobURL:     locator,
		UploadedAt:  time.Now().UTC(),
	}

	id, err := s.repomanager.FileRecords(s.db).Insert(ctx, record)
	if err != nil {
		// The blob already exists; the row does not. Orphaned blob accepted.
		s.logger.Error(ctx, "ledger insert failed after blob upload, blob orphaned",
			"key", key, "locator", locator, "error", err.Error())
		return 0, fmt.Errorf("%w: ledger insert failed", common.ErrorStorageUnavailable)
	}

	s.logger.Info(ctx, "file uploaded", "record_id", id, "user_id", userID, "file_type", fileType)
	return id, nil
}

// List returns the owner's records, newest upload first. Metadata only, never
// bytes.
func (s *FileService) List(ctx context.Context, userID int64) ([]*models.FileRecord, error) {
	records, err := s.repomanager.FileRecords(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger list failed", common.ErrorStorageUnavailable)
	}
	return records, nil
}

// Delete removes the record and its blob. An unknown id and an ownership
// mismatch are reported identically as ErrorNotFound, so the existence of
// other users' records never leaks. The blob delete runs first: a hard
// transport failure aborts before the ledger delete, so the row keeps
// reflecting a possibly still-present object; an already-absent blob proceeds.
func (s *FileService) Delete(ctx context.Context, userID, id int64) error {

	record, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, record.BlobURL); err != nil {
		s.logger.Error(ctx, "blob delete failed, keeping ledger row",
			"record_id", id, "locator", record.BlobURL, "error", err.Error())
		return fmt.Errorf("%w: blob delete failed", common.ErrorStorageUnavailable)
	}

	if err := s.repomanager.FileRecords(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// A concurrent delete won the race; the record is gone either way.
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: ledger delete failed", common.ErrorStorageUnavailable)
	}

	s.logger.Info(ctx, "file deleted", "record_id", id, "user_id", userID)
	return nil
}

// DownloadURL returns a presigned URL for the record's blob, after the same
// ownership check as Delete.
func (s *FileService) DownloadURL(ctx context.Context, userID, id int64) (string, error) {

	record, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.PresignGet(ctx, record.BlobURL)
	if err != nil {
		return "", fmt.Errorf("%w: presign failed", common.ErrorStorageUnavailable)
	}

	return url, nil
}

func (s *FileService) findOwned(ctx context.Context, userID, id int64) (*models.FileRecord, error) {
	record, err := s.repomanager.FileRecords(s.db).Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: ledger lookup failed", common.ErrorStorageUnavailable)
	}
	if record.OwnerUserID != userID {
		// Deliberately indistinguishable from a missing record.
		return nil, common.ErrorNotFound
	}
	return record, nil
}
