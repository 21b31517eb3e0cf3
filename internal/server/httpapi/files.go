package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hfiles/backend/internal/server/models"
)

// maxUploadBytes caps a multipart upload held in memory before spilling to
// disk.
const maxUploadBytes = 32 << 20

type fileResponse struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	BlobURL    string    `json:"blobUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toFileResponse(rec *models.FileRecord) fileResponse {
	return fileResponse{
		ID:         rec.ID,
		FileName:   rec.FileName,
		FileType:   rec.FileType,
		BlobURL:    rec.BlobURL,
		UploadedAt: rec.UploadedAt,
	}
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fileType := r.FormValue("fileType")
	fileName := r.FormValue("fileName")

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	id, err := s.files.Upload(r.Context(), userID, fileType, fileName, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fileId": id, "message": "file uploaded successfully"})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())

	records, err := s.files.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]fileResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toFileResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid file id")
		return
	}

	if err := s.files.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted successfully"})
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid file id")
		return
	}

	url, err := s.files.DownloadURL(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
