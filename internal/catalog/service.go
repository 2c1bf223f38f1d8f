package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalogservice/internal/platform/observability"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Repository is the persistence the catalog needs.
type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	IsEmpty(ctx context.Context) (bool, error)
	UpdateStockQuantity(ctx context.Context, id, quantity int) error
}

// Service holds the catalog business rules.
type Service struct {
	repo     Repository
	logger   observability.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logger observability.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *Service) GetAll(ctx context.Context) ([]Product, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	if id < 1 {
		return Product{}, fmt.Errorf("%w: id must be greater than zero", ErrInvalidRequest)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return Product{}, err
	}
	if exists {
		return Product{}, fmt.Errorf("%w: %q", ErrDuplicateName, req.Name)
	}

	product, err := s.repo.Create(ctx, Product{
		Name:          req.Name,
		URL:           req.URL,
		Price:         req.Price,
		Description:   req.Description,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return Product{}, err
	}

	s.logger.Info("✅ Product created", zap.Int("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// ValidateStockUpdate checks a stock update request before it is applied or queued.
func (s *Service) ValidateStockUpdate(req UpdateStockQuantityRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// UpdateStockQuantity applies a stock update synchronously.
func (s *Service) UpdateStockQuantity(ctx context.Context, req UpdateStockQuantityRequest) error {
	if err := s.ValidateStockUpdate(req); err != nil {
		return err
	}
	return s.repo.UpdateStockQuantity(ctx, req.ID, req.StockQuantity)
}
