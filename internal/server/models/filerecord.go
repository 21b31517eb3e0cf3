package models

import "time"

// FileRecord is the ledger row for one uploaded medical document. The binary
// content itself lives in object storage; BlobURL is the locator that resolves
// to it. Rows are created on upload and removed on delete, never mutated.
//
// Invariant: while a row exists its BlobURL must resolve to a retrievable
// object. Upload writes the blob before inserting the row, and delete removes
// the row only after the blob delete attempt, so the invariant is violated
// only transiently under partial failure (an orphaned blob is the accepted
// failure direction, a dangling row is not).
type FileRecord struct {
	ID          int64
	OwnerUserID int64
	// FileName is the display name chosen by the user, not the original
	// upload name.
	FileName string
	// FileType is one of the six document categories.
	FileType   string
	BlobURL    string
	UploadedAt time.Time
}
