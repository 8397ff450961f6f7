// internal/reports/handler.go
package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"libracirc/internal/directory"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleStudentStats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.GetStudentStats(r.Context(), chi.URLParam(r, "username"))
	json.NewEncoder(w).Encode(stats)
}

func (h *Handler) HandleStaffPerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.service.GetStaffPerformance(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, directory.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, directory.ErrNotStaff):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	json.NewEncoder(w).Encode(performance)
}

func (h *Handler) HandleBorrowStats(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.GetBorrowStats(r.Context()))
}

func (h *Handler) HandleTopDelays(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	ranking := h.service.GetTopDelays(r.Context(), limit)
	if ranking == nil {
		ranking = []StudentDelay{}
	}
	json.NewEncoder(w).Encode(ranking)
}

func (h *Handler) HandleGeneralStats(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.GetGeneralStats(r.Context()))
}
