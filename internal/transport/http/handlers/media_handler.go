package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	mediasvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/media"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/dto"
	httperrors "github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/errors"
)

const maxUploadBytes = 64 << 20 // 64 MiB

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := h.service.Upload(
		r.Context(),
		identity.UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid upload")
		case errors.Is(err, mediasvc.ErrRateLimited):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many uploads, slow down",
				RetryAfterSec: 60,
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to store upload")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MediaUploadResponse{
		ObjectKey: upload.ObjectKey,
		URL:       upload.URL,
	})
}
