package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ContactService interface {
	ListContacts(ctx context.Context, search string, pageNumber, pageSize int) (*domain.ContactPage, error)
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	CreateContact(ctx context.Context, contact *domain.Contact) error
	UpdateContact(ctx context.Context, id int64, contact *domain.Contact) error
	DeleteContact(ctx context.Context, id int64) error
}

type ContactHandler struct {
	service ContactService
}

func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// GetAll handles GET /api/contact?searchTerm=&pageNumber=&pageSize=.
func (h *ContactHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageNumber, err := queryInt(q.Get("pageNumber"), 1)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_page_number", "pageNumber must be an integer")
		return
	}
	pageSize, err := queryInt(q.Get("pageSize"), 10)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_page_size", "pageSize must be an integer")
		return
	}

	page, err := h.service.ListContacts(r.Context(), q.Get("searchTerm"), pageNumber, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, page)
}

func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}

	contact, err := h.service.GetContact(r.Context(), id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}

	respondJSON(w, r, http.StatusOK, contact)
}

func (h *ContactHandler) Add(w http.ResponseWriter, r *http.Request) {
	contact, ok := decodeContact(w, r)
	if !ok {
		return
	}
	contact.ID = 0

	if err := h.service.CreateContact(r.Context(), contact); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/contact/%d", contact.ID))
	respondJSON(w, r, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}
	contact, ok := decodeContact(w, r)
	if !ok {
		return
	}

	if err := h.service.UpdateContact(r.Context(), id, contact); err != nil {
		h.handleError(w, r, id, err)
		return
	}

	respondJSON(w, r, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContact(r.Context(), id); err != nil {
		h.handleError(w, r, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) handleError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, repository.ErrContactNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", fmt.Sprintf("Contact with ID %d not found.", id))
		return
	}
	handleServiceError(w, r, err)
}

func contactIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeContact(w http.ResponseWriter, r *http.Request) (*domain.Contact, bool) {
	var contact *domain.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, false
	}
	if contact == nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "Contact cannot be null.")
		return nil, false
	}
	return contact, true
}

func queryInt(raw string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
