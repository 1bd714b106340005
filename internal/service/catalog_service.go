package service

import (
	"context"
	"errors"
	"time"

	"grocer-service/internal/models"
	"grocer-service/internal/store"
	"grocer-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore reads the product catalog.
type CatalogStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]models.Product, error)
}

// ProductCache caches the full product listing.
type ProductCache interface {
	CacheProductList(ctx context.Context, products []models.Product, ttl time.Duration) error
	CachedProductList(ctx context.Context) ([]models.Product, bool, error)
}

// CatalogService serves product browsing, with the full listing cached.
type CatalogService struct {
	store    CatalogStore
	cache    ProductCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, cache ProductCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns the full catalog, served from cache when warm.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	if s.cache != nil {
		if products, hit, err := s.cache.CachedProductList(ctx); err == nil && hit {
			util.CatalogCacheHitsTotal.Inc()
			return products, nil
		}
		util.CatalogCacheMissesTotal.Inc()
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProductList(ctx, products, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct returns a single product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// SearchProducts returns products matching a name query.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	return s.store.SearchProducts(ctx, query)
}

// ProductsByCategory returns the products in one category.
func (s *CatalogService) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.store.GetProductsByCategory(ctx, category)
}

// FeaturedProducts returns the featured selection.
func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetFeaturedProducts(ctx)
}
