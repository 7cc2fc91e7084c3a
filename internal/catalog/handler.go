package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/httpx"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Handler wires HTTP endpoints for the master brand catalog.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/search", h.search)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
}

type listResponse struct {
	Brands     []Brand           `json:"brands"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := ListFilter{
		Kind:   Kind(q.Get("kind")),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}
	brands, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list brands failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if brands == nil {
		brands = []Brand{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Brands: brands, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid brand id")
		return
	}
	brand, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, brand)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	brand, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid brand id")
		return
	}
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	brand, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, brand)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	brands, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("brand search failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBrandNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateBrand):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrNegativePrice):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
