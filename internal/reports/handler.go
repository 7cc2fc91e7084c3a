package reports

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/httpx"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Handler wires HTTP endpoints for report generation.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs report handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes. All routes require shop scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{type}", h.get)
	r.Get("/{type}/pdf", h.getPDF)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	typ, from, to, err := parseRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	report, err := h.service.Build(r.Context(), shared.ShopFromContext(r.Context()), typ, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) getPDF(w http.ResponseWriter, r *http.Request) {
	typ, from, to, err := parseRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	report, err := h.service.Build(r.Context(), shared.ShopFromContext(r.Context()), typ, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	pdf, err := h.service.RenderPDF(r.Context(), report)
	if err != nil {
		h.logger.Error("report pdf render failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Render Unavailable", "pdf rendering is unavailable")
		return
	}
	filename := fmt.Sprintf("%s-%s-%s.pdf", typ,
		shared.FormatBusinessDate(from), shared.FormatBusinessDate(to))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func parseRequest(r *http.Request) (Type, time.Time, time.Time, error) {
	typ := Type(chi.URLParam(r, "type"))
	if !typ.Valid() {
		return "", time.Time{}, time.Time{}, errors.New("unknown report type, want stock-lifted or sales")
	}
	q := r.URL.Query()
	from, err := shared.ParseBusinessDate(q.Get("from"))
	if err != nil {
		return "", time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
	}
	to := from
	if toStr := q.Get("to"); toStr != "" {
		to, err = shared.ParseBusinessDate(toStr)
		if err != nil {
			return "", time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return "", time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return typ, from, to, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownType), errors.Is(err, ErrInvalidRange):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("report request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
