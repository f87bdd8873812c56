package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	contentsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/content"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/dto"
	httperrors "github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/errors"
)

const defaultListLimit = 100

// ModerationHandler exposes the admin moderation surface: the review queue,
// human review decisions, bulk re-scans and dashboard stats.
type ModerationHandler struct {
	service  *modsvc.Service
	contents *contentsvc.Service
	logger   *zap.Logger
}

func NewModerationHandler(service *modsvc.Service, contents *contentsvc.Service, logger *zap.Logger) *ModerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationHandler{service: service, contents: contents, logger: logger}
}

// Review lands a human decision on a record awaiting review and syncs the
// content item's active flag with the outcome.
func (h *ModerationHandler) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	moderationID := chi.URLParam(r, "id")
	if moderationID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid moderation id")
		return
	}

	var req dto.HumanReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	record, err := h.service.SubmitHumanReview(r.Context(), moderationID, req.Decision, req.Note, identity.UserID)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	if h.contents != nil {
		if err := h.contents.ApplyModeration(r.Context(), record); err != nil {
			h.logger.Warn("sync content activation after review",
				zap.String("moderation_id", record.ID),
				zap.Error(err))
		}
	}

	httperrors.Write(w, http.StatusOK, toModerationResponse(record))
}

func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	status, ok := enums.ParseModerationStatus(r.URL.Query().Get("status"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown moderation status")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.service.ListByStatus(r.Context(), status, limit)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	items := make([]dto.ModerationRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toModerationResponse(record))
	}
	httperrors.Write(w, http.StatusOK, dto.ModerationListResponse{Items: items})
}

func (h *ModerationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationStatsResponse{
		Total:            stats.Total,
		Approved:         stats.Approved,
		Rejected:         stats.Rejected,
		Pending:          stats.Pending,
		Reviewing:        stats.Reviewing,
		AutoApproved:     stats.AutoApproved,
		AutoRejected:     stats.AutoRejected,
		AutoApprovalRate: stats.AutoApprovalRate(),
	})
}

// RescanAll re-moderates the whole catalog. Individual failures are reported
// in the response body instead of aborting the pass.
func (h *ModerationHandler) RescanAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	result, err := h.service.ModerateAll(r.Context())
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationBulkResponse{
		Processed: result.Processed,
		Approved:  result.Approved,
		Rejected:  result.Rejected,
		Pending:   result.Pending,
		Errors:    result.Errors,
	})
}

func (h *ModerationHandler) RescanOne(w http.ResponseWriter, r *http.Request) {
	if h.contents == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	contentID, ok := urlParamInt64(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid content id")
		return
	}

	item, err := h.contents.Rescan(r.Context(), contentID)
	if err != nil {
		if errors.Is(err, contentsvc.ErrContentNotFound) {
			writeNotFound(w, "CONTENT_NOT_FOUND", "content item not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to re-moderate content item")
		return
	}

	httperrors.Write(w, http.StatusOK, toContentResponse(item))
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, modsvc.ErrRecordNotFound):
		writeNotFound(w, "MODERATION_RECORD_NOT_FOUND", "moderation record not found")
	case errors.Is(err, modsvc.ErrInvalidTransition):
		writeConflict(w, "INVALID_TRANSITION", "moderation record is not awaiting review")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
