package product

import (
	"time"

	"ecommerce-api/internal/domain"
)

type ProductModel struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"`
	Name         string      `gorm:"size:255"`
	Description  string      `gorm:"type:text"`
	Category     string      `gorm:"size:100;index"`
	Price        float64     `gorm:"type:decimal(10,2)"`
	StartDate    domain.Date `gorm:"type:date"`
	ExpiryDate   domain.Date `gorm:"type:date"`
	FreeDelivery bool        `gorm:"not null;default:false"`
	ImageURL     string      `gorm:"size:512"`
	OldPrice     float64     `gorm:"type:decimal(10,2)"`
	NewPrice     float64     `gorm:"type:decimal(10,2)"`
	VendorID     *int64      `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProductModel) TableName() string { return "products" }

func FromDomain(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		StartDate:    p.StartDate,
		ExpiryDate:   p.ExpiryDate,
		FreeDelivery: p.FreeDelivery,
		ImageURL:     p.ImageURL,
		OldPrice:     p.OldPrice,
		NewPrice:     p.NewPrice,
		VendorID:     p.VendorID,
	}
}

func (m *ProductModel) ToDomain() domain.Product {
	return domain.Product{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		Price:        m.Price,
		StartDate:    m.StartDate,
		ExpiryDate:   m.ExpiryDate,
		FreeDelivery: m.FreeDelivery,
		ImageURL:     m.ImageURL,
		OldPrice:     m.OldPrice,
		NewPrice:     m.NewPrice,
		VendorID:     m.VendorID,
	}
}
