package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/auth"
	"storefront/internal/httpx"
)

type productRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0,lte=9999999999.99"`
	Category    string   `json:"category" validate:"max=100"`
	InStock     *bool    `json:"in_stock"`
}

func (req productRequest) apply(p *Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = *req.Price
	p.Category = req.Category
	p.InStock = true
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Category: q.Get("category")}
	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		httpx.Message(w, http.StatusBadRequest, "limit must be a number")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		httpx.Message(w, http.StatusBadRequest, "offset must be a number")
		return
	}
	items, err := h.Store.List(r.Context(), f)
	if err != nil {
		httpx.Internal(w, r, h.Logger, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, err)
		return
	}
	p := &Product{}
	req.apply(p)
	if subject, ok := auth.SubjectFromContext(r.Context()); ok {
		p.UserID = &subject
	}
	if err := h.Store.Create(r.Context(), p); err != nil {
		httpx.Internal(w, r, h.Logger, "create product", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "product created", "product_id", p.ID)
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.BadRequest(w, err)
		return
	}
	p := &Product{ID: chi.URLParam(r, "id")}
	req.apply(p)
	if err := h.Store.Update(r.Context(), p); err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete product", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "product removed", "product_id", id)
	httpx.Message(w, http.StatusOK, "Product removed")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Message(w, http.StatusNotFound, "Product not found")
		return
	}
	httpx.Internal(w, r, h.Logger, op, err)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
