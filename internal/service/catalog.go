package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"webshop/internal/models"
	"webshop/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns the whole matching catalog. The endpoint has no
// pagination.
func (s *CatalogService) ListProducts(ctx context.Context, filter repo.ProductFilter) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, filter)
}
