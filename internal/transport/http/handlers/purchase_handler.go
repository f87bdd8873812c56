package handlers

import (
	"errors"
	"net/http"

	pgrepo "github.com/sylveur65/Projet-goodyfans-sub000/internal/repo/postgres"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	purchasesvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/purchases"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/dto"
	httperrors "github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/errors"
)

type PurchaseHandler struct {
	service *purchasesvc.Service
}

func NewPurchaseHandler(service *purchasesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	var req dto.BuyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	purchase, err := h.service.Buy(r.Context(), identity.UserID, req.ContentID)
	if err != nil {
		handlePurchaseError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toPurchaseResponse(purchase))
}

// Open returns the purchased item with a fresh signed URL for its object.
func (h *PurchaseHandler) Open(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	contentID, ok := urlParamInt64(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid content id")
		return
	}

	access, err := h.service.Open(r.Context(), identity.UserID, contentID)
	if err != nil {
		handlePurchaseError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseAccessResponse{
		Content:   toContentRowResponse(access.Content),
		SignedURL: access.SignedURL,
	})
}

func (h *PurchaseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	purchases, err := h.service.ListByBuyer(r.Context(), identity.UserID)
	if err != nil {
		handlePurchaseError(w, err)
		return
	}

	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, purchase := range purchases {
		items = append(items, toPurchaseResponse(purchase))
	}
	httperrors.Write(w, http.StatusOK, dto.PurchaseListResponse{Items: items})
}

func handlePurchaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, purchasesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, purchasesvc.ErrContentNotFound):
		writeNotFound(w, "CONTENT_NOT_FOUND", "content item not found")
	case errors.Is(err, purchasesvc.ErrContentInactive):
		writeConflict(w, "CONTENT_INACTIVE", "content item is not for sale")
	case errors.Is(err, purchasesvc.ErrOwnPurchase):
		writeConflict(w, "OWN_CONTENT", "creators cannot buy their own content")
	case errors.Is(err, purchasesvc.ErrPurchaseNotFound):
		writeForbidden(w, "NO_ACCESS", "item has not been purchased")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toPurchaseResponse(purchase pgrepo.PurchaseRecord) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:         purchase.ID,
		ContentID:  purchase.ContentID,
		PriceCents: purchase.PriceCents,
		CreatedAt:  purchase.CreatedAt,
	}
}
