package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/transport/http/ez"
	resp "ecommerce-api/internal/transport/http/response"
)

type ProductService interface {
	Create(ctx context.Context, p *domain.Product) (int64, error)
	Update(ctx context.Context, id int64, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	DefaultLimit() int
}

type ProductHandler struct{ svc ProductService }

func NewProductHandler(svc ProductService) *ProductHandler { return &ProductHandler{svc: svc} }

type createOut struct {
	Message   string `json:"message"`
	ProductID int64  `json:"productId"`
}

const msgProductNotFound = "Product not found"

// MountPublic 只读接口；/products/search 与 /products/:id 并存
func (h *ProductHandler) MountPublic(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet, Path: "/products", Binder: ez.BindNone, Handler: h.list,
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet, Path: "/products/search", Binder: ez.BindNone, Handler: h.search,
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet, Path: "/products/:id", Binder: ez.BindNone, Handler: h.get,
	})
}

// MountProtected 写接口，分组需挂 AuthJWT
func (h *ProductHandler) MountProtected(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[domain.Product, createOut]{
		Method: http.MethodPost, Path: "/products", Binder: ez.BindJSON, Status: http.StatusCreated, Handler: h.create,
	})
	ez.RegisterAction(e, ez.Action[domain.Product, resp.MsgResp]{
		Method: http.MethodPut, Path: "/products/:id", Binder: ez.BindJSON, Handler: h.update,
	})
	ez.RegisterAction(e, ez.Action[struct{}, resp.MsgResp]{
		Method: http.MethodDelete, Path: "/products/:id", Binder: ez.BindNone, Handler: h.delete,
	})
}

func (h *ProductHandler) create(c *gin.Context, in *domain.Product) (createOut, error) {
	id, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		return createOut{}, ez.Internal("Failed to add product", err)
	}
	return createOut{Message: "Product created successfully", ProductID: id}, nil
}

func (h *ProductHandler) update(c *gin.Context, in *domain.Product) (resp.MsgResp, error) {
	id, ok := pathID(c)
	if !ok {
		return resp.MsgResp{}, ez.NotFound(msgProductNotFound)
	}
	err := h.svc.Update(c.Request.Context(), id, in)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.MsgResp{}, ez.NotFound(msgProductNotFound)
	case err != nil:
		return resp.MsgResp{}, ez.Internal("Failed to update product", err)
	}
	return resp.Msg("Product updated successfully"), nil
}

func (h *ProductHandler) delete(c *gin.Context, _ *struct{}) (resp.MsgResp, error) {
	id, ok := pathID(c)
	if !ok {
		return resp.MsgResp{}, ez.NotFound(msgProductNotFound)
	}
	err := h.svc.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.MsgResp{}, ez.NotFound(msgProductNotFound)
	case err != nil:
		return resp.MsgResp{}, ez.Internal("Failed to delete product", err)
	}
	return resp.Msg("Product deleted successfully"), nil
}

func (h *ProductHandler) get(c *gin.Context, _ *struct{}) (*domain.Product, error) {
	id, ok := pathID(c)
	if !ok {
		return nil, ez.NotFound(msgProductNotFound)
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, ez.NotFound(msgProductNotFound)
	case err != nil:
		return nil, ez.Internal("Failed to fetch product", err)
	}
	return p, nil
}

func (h *ProductHandler) list(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		return nil, ez.Internal("Failed to fetch products", err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (h *ProductHandler) search(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
	f := domain.ProductFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", h.svc.DefaultLimit()),
	}
	out, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		return nil, ez.Internal("Failed to fetch products", err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

// pathID 非数字 id 当作不存在
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// queryInt 缺省或解析失败用默认值，不做范围钳制
func queryInt(c *gin.Context, key string, def int) int {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
