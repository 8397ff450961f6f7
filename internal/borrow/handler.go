// internal/borrow/handler.go
package borrow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentUsername string    `json:"student_username"`
		BookID          uuid.UUID `json:"book_id"`
		StartDate       string    `json:"start_date"`
		EndDate         string    `json:"end_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	request, err := h.service.CreateBorrowRequest(r.Context(), req.StudentUsername, req.BookID, startDate, endDate)
	if err != nil {
		http.Error(w, err.Error(), borrowStatusFor(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			http.Error(w, "invalid as_of, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}

	requests := h.service.PendingForReview(r.Context(), asOf)
	if requests == nil {
		requests = []*Request{}
	}
	json.NewEncoder(w).Encode(requests)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.ApproveRequest)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.RejectRequest)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, string) error) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid request ID", http.StatusBadRequest)
		return
	}

	var req struct {
		StaffUsername string `json:"staff_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), requestID, req.StaffUsername); err != nil {
		http.Error(w, err.Error(), borrowStatusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid record ID", http.StatusBadRequest)
		return
	}

	var req struct {
		StaffUsername string `json:"staff_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.ReturnBook(r.Context(), recordID, req.StaffUsername); err != nil {
		http.Error(w, err.Error(), borrowStatusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleStudentHistory(w http.ResponseWriter, r *http.Request) {
	records := h.service.StudentHistory(r.Context(), chi.URLParam(r, "username"))
	if records == nil {
		records = []*Record{}
	}
	json.NewEncoder(w).Encode(records)
}

func (h *Handler) HandleActiveBorrows(w http.ResponseWriter, r *http.Request) {
	records := h.service.ActiveBorrows(r.Context())
	if records == nil {
		records = []*Record{}
	}
	json.NewEncoder(w).Encode(records)
}

func borrowStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
