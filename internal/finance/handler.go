package finance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/httpx"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Handler wires HTTP endpoints for income/expense bookkeeping.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs finance handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Get("/summary", h.summary)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	entry, err := h.service.Add(r.Context(), shared.ShopFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	entry, err := h.service.Update(r.Context(), shared.ShopFromContext(r.Context()), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	if err := h.service.Delete(r.Context(), shared.ShopFromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	entries, err := h.service.List(r.Context(), shared.ShopFromContext(r.Context()), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	summaries, err := h.service.Summary(r.Context(), shared.ShopFromContext(r.Context()), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if summaries == nil {
		summaries = []DaySummary{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"days": summaries})
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := shared.ParseBusinessDate(q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
	}
	to := from
	if toStr := q.Get("to"); toStr != "" {
		to, err = shared.ParseBusinessDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return from, to, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("finance request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
