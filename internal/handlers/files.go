package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abzsd/CareAgents/internal/logger"
	"github.com/abzsd/CareAgents/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadResponse represents a successful file upload
// swagger:model UploadResponse
type UploadResponse struct {
	// Retrieval key for the stored file
	Key string `json:"key"`
}

// NewUploadFileHandler returns an HTTP handler for multipart file uploads.
// @Summary Upload a file
// @Description Stores an uploaded file (profile photo, scanned document) and returns its key.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param folder path string true "Target folder"
// @Param file formData file true "File to upload"
// @Success 201 {object} handlers.UploadResponse "File stored"
// @Failure 400 {object} handlers.ErrorResponse "Invalid upload"
// @Security BearerAuth
// @Router /files/{folder} [post]
func NewUploadFileHandler(store storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folder := chi.URLParam(r, "folder")

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "A file form field is required")
			return
		}
		defer file.Close()

		key, err := store.Put(r.Context(), folder, header.Filename, file)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, UploadResponse{Key: key})
	}
}

// NewDownloadFileHandler returns an HTTP handler for fetching a stored file.
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Param folder path string true "Folder"
// @Param name path string true "File name"
// @Success 200 {file} binary "File contents"
// @Failure 404 {object} handlers.ErrorResponse "File not found"
// @Security BearerAuth
// @Router /files/{folder}/{name} [get]
func NewDownloadFileHandler(store storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "folder") + "/" + chi.URLParam(r, "name")

		rc, err := store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "File not found")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		io.Copy(w, rc)
	}
}

// ListFilesResponse represents the keys stored under one folder
// swagger:model ListFilesResponse
type ListFilesResponse struct {
	Keys []string `json:"keys"`
}

// NewListFilesHandler returns an HTTP handler listing a folder's files.
// @Summary List stored files
// @Tags files
// @Produce json
// @Param folder path string true "Folder"
// @Success 200 {object} handlers.ListFilesResponse "Stored keys"
// @Security BearerAuth
// @Router /files/{folder} [get]
func NewListFilesHandler(store storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := store.List(r.Context(), chi.URLParam(r, "folder"))
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, ListFilesResponse{Keys: keys})
	}
}

// NewDeleteFileHandler returns an HTTP handler for removing a stored file.
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param folder path string true "Folder"
// @Param name path string true "File name"
// @Success 200 {object} handlers.MessageResponse "File deleted"
// @Failure 404 {object} handlers.ErrorResponse "File not found"
// @Security BearerAuth
// @Router /files/{folder}/{name} [delete]
func NewDeleteFileHandler(store storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "folder") + "/" + chi.URLParam(r, "name")

		if err := store.Delete(r.Context(), key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "File not found")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "File deleted successfully"})
	}
}
