package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/feature/product"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) (int64, error) {
	m := product.FromDomain(p)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	p.ID = m.ID
	return m.ID, nil
}

// Update 整行覆盖；返回命中行数，0 表示不存在
func (r *ProductRepo) Update(ctx context.Context, id int64, p *domain.Product) (int64, error) {
	m := product.FromDomain(p)
	m.ID = 0
	res := r.db.WithContext(ctx).
		Model(&product.ProductModel{}).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return 0, fmt.Errorf("update product %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&product.ProductModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m product.ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	p := m.ToDomain()
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var ms []product.ProductModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toDomainList(ms), nil
}

// Search name 忽略大小写子串匹配，category 精确匹配，再按 page/limit 取一页
func (r *ProductRepo) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&product.ProductModel{})
	if s := strings.TrimSpace(f.Name); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var ms []product.ProductModel
	if err := q.Order("id ASC").Limit(f.Limit).Offset(f.Offset()).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return toDomainList(ms), nil
}

func toDomainList(ms []product.ProductModel) []domain.Product {
	out := make([]domain.Product, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDomain())
	}
	return out
}
