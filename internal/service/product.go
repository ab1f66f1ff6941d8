package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ecommerce-api/internal/core/auth"
	"ecommerce-api/internal/core/cache"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/events"
)

type ProductOptions struct {
	DefaultLimit int
	MaxLimit     int // 0 不钳制
	Cache        *cache.Cache
	CacheTTL     time.Duration
	Publisher    events.Publisher
	Logger       *zap.Logger
}

type ProductService struct {
	repo domain.ProductRepository
	opt  ProductOptions
	log  *zap.Logger
}

func NewProductService(repo domain.ProductRepository, opt ProductOptions) *ProductService {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Publisher == nil {
		opt.Publisher = events.Nop{}
	}
	if opt.DefaultLimit <= 0 {
		opt.DefaultLimit = 10
	}
	if opt.CacheTTL <= 0 {
		opt.CacheTTL = 5 * time.Minute
	}
	return &ProductService{repo: repo, opt: opt, log: opt.Logger}
}

func cacheKey(id int64) string { return fmt.Sprintf("product:%d", id) }

// Create vendor_id 缺省时取调用方 id
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (int64, error) {
	caller, ok := auth.IdentityFrom(ctx)
	if p.VendorID == nil && ok {
		uid := caller.UserID
		p.VendorID = &uid
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, events.ProductEvent{Type: events.ProductCreated, ProductID: id, UserID: caller.UserID, Name: p.Name})
	return id, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, p *domain.Product) error {
	n, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.invalidate(ctx, id)
	caller, _ := auth.IdentityFrom(ctx)
	s.publish(ctx, events.ProductEvent{Type: events.ProductUpdated, ProductID: id, UserID: caller.UserID, Name: p.Name})
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.invalidate(ctx, id)
	caller, _ := auth.IdentityFrom(ctx)
	s.publish(ctx, events.ProductEvent{Type: events.ProductDeleted, ProductID: id, UserID: caller.UserID})
	return nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if s.opt.Cache == nil {
		return s.repo.GetByID(ctx, id)
	}
	return cache.GetOrLoadJSON(s.opt.Cache, ctx, cacheKey(id), s.opt.CacheTTL, func(ctx context.Context) (*domain.Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Search page/limit 原样下传；仅在配置了 MaxLimit 时钳制 limit
func (s *ProductService) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if s.opt.MaxLimit > 0 && f.Limit > s.opt.MaxLimit {
		f.Limit = s.opt.MaxLimit
	}
	return s.repo.Search(ctx, f)
}

func (s *ProductService) DefaultLimit() int { return s.opt.DefaultLimit }

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if s.opt.Cache == nil {
		return
	}
	if err := s.opt.Cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("product cache invalidate failed", zap.Int64("product_id", id), zap.Error(err))
	}
}

func (s *ProductService) publish(ctx context.Context, ev events.ProductEvent) {
	if err := s.opt.Publisher.PublishProduct(ctx, ev); err != nil {
		s.log.Warn("product event publish failed",
			zap.String("type", ev.Type), zap.Int64("product_id", ev.ProductID), zap.Error(err))
	}
}
