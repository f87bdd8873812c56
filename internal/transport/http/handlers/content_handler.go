package handlers

import (
	"errors"
	"net/http"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	contentsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/content"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/dto"
	httperrors "github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/errors"
)

type ContentHandler struct {
	service *contentsvc.Service
}

func NewContentHandler(service *contentsvc.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Create accepts a new item for sale. Moderation runs synchronously: the
// response carries the final status, and the item is only purchasable once
// it comes back approved.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	var req dto.CreateContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	item, err := h.service.Create(r.Context(), contentsvc.CreateInput{
		OwnerID:     identity.UserID,
		Kind:        enums.ContentKind(req.Kind),
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ObjectKey:   req.ObjectKey,
	})
	if err != nil {
		handleContentError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toContentResponse(item))
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	contentID, ok := urlParamInt64(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid content id")
		return
	}

	item, err := h.service.Get(r.Context(), contentID)
	if err != nil {
		handleContentError(w, err)
		return
	}

	// Moderation details are owner-only; everyone else sees the public row.
	identity, _ := authsvc.IdentityFromContext(r.Context())
	if identity.UserID != item.Content.OwnerID && identity.Role != string(enums.UserRoleAdmin) {
		item.HasRecord = false
	}

	httperrors.Write(w, http.StatusOK, toContentResponse(item))
}

func (h *ContentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	records, err := h.service.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		handleContentError(w, err)
		return
	}

	items := make([]dto.ContentResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toContentRowResponse(record))
	}
	httperrors.Write(w, http.StatusOK, dto.ContentListResponse{Items: items})
}

func handleContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contentsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, contentsvc.ErrContentNotFound):
		writeNotFound(w, "CONTENT_NOT_FOUND", "content item not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toContentResponse(item contentsvc.Item) dto.ContentResponse {
	resp := toContentRowResponse(item.Content)
	if item.HasRecord {
		record := toModerationResponse(item.Moderation)
		resp.Moderation = &record
	}
	return resp
}

func toContentRowResponse(record pgrepo.ContentRecord) dto.ContentResponse {
	return dto.ContentResponse{
		ID:          record.ID,
		OwnerID:     record.OwnerID,
		Kind:        string(record.Kind),
		Title:       record.Title,
		Description: record.Description,
		PriceCents:  record.PriceCents,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
	}
}

func toModerationResponse(record modsvc.Record) dto.ModerationRecordResponse {
	resp := dto.ModerationRecordResponse{
		ID:          record.ID,
		ContentID:   record.ContentID,
		ContentKind: string(record.ContentKind),
		Status:      string(record.Status),
		Confidence:  record.Confidence,
		Categories:  record.Categories,
		Flags:       record.Flags,
		Reason:      record.Reason,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	if record.Review != nil {
		resp.Review = &dto.HumanReviewResponse{
			Decision:   record.Review.Decision,
			Note:       record.Review.Note,
			ReviewerID: record.Review.ReviewerID,
			ReviewedAt: record.Review.ReviewedAt,
		}
	}
	return resp
}
