package estimate

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/httpx"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Handler wires HTTP endpoints for indent estimates.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs estimate handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers estimate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/compute", h.compute)
	r.Post("/", h.saveDraft)
	r.Get("/", h.listDrafts)
	r.Get("/{id}", h.getDraft)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) {
	var input ComputeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	est, err := h.service.Compute(r.Context(), shared.ShopFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	var input ComputeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	est, err := h.service.SaveDraft(r.Context(), shared.ShopFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, est)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid estimate id")
		return
	}
	est, err := h.service.GetDraft(r.Context(), shared.ShopFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	estimates, err := h.service.ListDrafts(r.Context(), shared.ShopFromContext(r.Context()), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if estimates == nil {
		estimates = []Estimate{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"estimates": estimates})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEstimateNotFound), errors.Is(err, catalog.ErrBrandNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNoLines):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("estimate request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
