package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memRepository is an in-memory Repository.
type memRepository struct {
	mu       sync.Mutex
	products map[int]Product
	nextID   int
	err      error
}

func newMemRepository(products ...Product) *memRepository {
	r := &memRepository{products: make(map[int]Product), nextID: 1}
	for _, p := range products {
		_, _ = r.Create(context.Background(), p)
	}
	return r
}

func (r *memRepository) GetAll(ctx context.Context) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepository) GetByID(ctx context.Context, id int) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memRepository) Create(ctx context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == product.Name {
			return Product{}, ErrDuplicateName
		}
	}
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = product
	return product, nil
}

func (r *memRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepository) IsEmpty(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products) == 0, nil
}

func (r *memRepository) UpdateStockQuantity(ctx context.Context, id, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.StockQuantity = quantity
	r.products[id] = p
	return nil
}

// MockSubmitter is a mock implementation of stock.Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, productID, newQuantity int) (uuid.UUID, error) {
	args := m.Called(ctx, productID, newQuantity)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
