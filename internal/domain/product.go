package domain

import "context"

type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	StartDate    Date    `json:"start_date"`
	ExpiryDate   Date    `json:"expiry_date"`
	FreeDelivery bool    `json:"free_delivery"`
	ImageURL     string  `json:"image_url"`
	OldPrice     float64 `json:"old_price"`
	NewPrice     float64 `json:"new_price"`
	VendorID     *int64  `json:"vendor_id"`
}

// ProductFilter 搜索条件；Name/Category 为空表示不过滤
type ProductFilter struct {
	Name     string
	Category string
	Page     int
	Limit    int
}

// Offset (page-1)*limit，不做钳制
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, id int64, p *Product) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, f ProductFilter) ([]Product, error)
}
