// Package services implements the application workflows on top of the
// repositories and the blob store: account management and the dual-write
// file lifecycle.
package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileTypes is the fixed set of document categories accepted on upload.
var FileTypes = []string{"Lab Report", "Prescription", "X-Ray", "Blood Report", "MRI Scan", "CT Scan"}

// documentExtensions is accepted for medical documents; imageExtensions is
// the subset accepted for profile images.
var (
	documentExtensions = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	imageExtensions    = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
)

func isAllowedFileType(fileType string) bool {
	for _, t := range FileTypes {
		if t == fileType {
			return true
		}
	}
	return false
}

// fileExt extracts the lower-cased extension (with dot) from an upload name.
func fileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// makeObjectKey derives a blob key for a new upload. The key embeds the
// owning user id and a fresh UUID, so two uploads never collide and a key
// cannot be guessed from sequential record ids.
func makeObjectKey(namespace string, userID int64, ext string) string {
	return fmt.Sprintf("%s/%d_%s%s", namespace, userID, uuid.New(), ext)
}
