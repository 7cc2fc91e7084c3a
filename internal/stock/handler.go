package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/httpx"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Handler wires HTTP endpoints for daily stock.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs stock handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers stock routes. All routes require shop scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/onboarding", h.onboard)
	r.Post("/receive", h.receive)
	r.Post("/closing", h.setClosing)
	r.Put("/markup", h.updateMarkup)
	r.Get("/current-stock", h.currentStock)
	r.Post("/shift", h.postShift)
	r.Get("/shifts", h.listShifts)
}

type onboardRequest struct {
	Items []OnboardItem `json:"items"`
}

func (h *Handler) onboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	recs, err := h.service.Onboard(r.Context(), shared.ShopFromContext(r.Context()), req.Items)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"records": recs})
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var input ReceiveInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	rec, err := h.service.Receive(r.Context(), shared.ShopFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) setClosing(w http.ResponseWriter, r *http.Request) {
	var input ClosingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	rec, err := h.service.SetClosing(r.Context(), shared.ShopFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

type markupRequest struct {
	BrandID int64           `json:"brandId"`
	Markup  decimal.Decimal `json:"markup"`
}

func (h *Handler) updateMarkup(w http.ResponseWriter, r *http.Request) {
	var req markupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	rec, err := h.service.UpdateMarkup(r.Context(), shared.ShopFromContext(r.Context()), req.BrandID, req.Markup)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) currentStock(w http.ResponseWriter, r *http.Request) {
	date := shared.CurrentBusinessDate()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := shared.ParseBusinessDate(dateStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid date, want YYYY-MM-DD")
			return
		}
		date = parsed
	}
	items, err := h.service.CurrentStock(r.Context(), shared.ShopFromContext(r.Context()), date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"businessDate": shared.FormatBusinessDate(date),
		"items":        items,
	})
}

func (h *Handler) postShift(w http.ResponseWriter, r *http.Request) {
	var input ShiftInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	// The shop header is the source unless stated, matching the transfer
	// screen where the sender initiates the shift.
	if input.SrcShopID == 0 {
		input.SrcShopID = shared.ShopFromContext(r.Context())
	}
	out, in, err := h.service.PostShift(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"out": out, "in": in})
}

func (h *Handler) listShifts(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	recs, err := h.service.ListShifts(r.Context(), shared.ShopFromContext(r.Context()), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if recs == nil {
		recs = []ShiftRecord{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"shifts": recs})
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
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
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, catalog.ErrBrandNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyOnboarded):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrSameShop), errors.Is(err, ErrClosingExceedsTotal):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	default:
		h.logger.Error("stock request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
