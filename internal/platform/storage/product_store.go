package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"catalogservice/internal/catalog"
	"catalogservice/internal/platform/observability"
	"catalogservice/internal/stock"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// ProductStore persists catalog products and provides the read-write scopes
// the stock update consumer mutates through.
type ProductStore struct {
	db     *DB
	logger observability.Logger
}

func NewProductStore(db *DB, logger observability.Logger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

// productKey is the badgerhold key of a product. Keys are always encoded as
// uint64 so reads and writes agree on the gob representation.
func productKey(id int) uint64 {
	return uint64(id)
}

func (s *ProductStore) GetAll(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := s.db.Store().Find(&products, nil); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	slices.SortFunc(products, func(a, b catalog.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id int) (catalog.Product, error) {
	var product catalog.Product
	if err := s.db.Store().Get(productKey(id), &product); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

// Create assigns the next free id to product and stores it. Names are unique.
func (s *ProductStore) Create(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	store := s.db.Store()

	err := store.Badger().Update(func(tx *badger.Txn) error {
		var same []catalog.Product
		if err := store.TxFind(tx, &same, badgerhold.Where("Name").Eq(product.Name).Limit(1)); err != nil {
			return fmt.Errorf("failed to check product name: %w", err)
		}
		if len(same) > 0 {
			return catalog.ErrDuplicateName
		}

		var last []catalog.Product
		if err := store.TxFind(tx, &last, badgerhold.Where("ID").Ge(0).SortBy("ID").Reverse().Limit(1)); err != nil {
			return fmt.Errorf("failed to allocate product id: %w", err)
		}
		product.ID = 1
		if len(last) > 0 {
			product.ID = last[0].ID + 1
		}

		return store.TxInsert(tx, productKey(product.ID), &product)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateName) {
			return catalog.Product{}, err
		}
		return catalog.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Debug("Product created", zap.Int("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *ProductStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var found []catalog.Product
	if err := s.db.Store().Find(&found, badgerhold.Where("Name").Eq(name).Limit(1)); err != nil {
		return false, fmt.Errorf("failed to look up product name: %w", err)
	}
	return len(found) > 0, nil
}

// IsEmpty reports whether the catalog holds no products.
func (s *ProductStore) IsEmpty(ctx context.Context) (bool, error) {
	var first []catalog.Product
	if err := s.db.Store().Find(&first, (&badgerhold.Query{}).Limit(1)); err != nil {
		return false, fmt.Errorf("failed to inspect catalog: %w", err)
	}
	return len(first) == 0, nil
}

// UpdateStockQuantity sets the stock of a product in its own transaction.
func (s *ProductStore) UpdateStockQuantity(ctx context.Context, id, quantity int) error {
	scope, err := s.NewScope(ctx)
	if err != nil {
		return err
	}
	defer scope.Discard()

	found, err := scope.UpdateStockQuantity(ctx, id, quantity)
	if err != nil {
		return err
	}
	if !found {
		return catalog.ErrProductNotFound
	}
	return scope.Commit()
}

// NewScope opens a read-write transaction. The caller must Discard it.
func (s *ProductStore) NewScope(ctx context.Context) (stock.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &productScope{
		store: s.db.Store(),
		tx:    s.db.Store().Badger().NewTransaction(true),
	}, nil
}

type productScope struct {
	store *badgerhold.Store
	tx    *badger.Txn
}

func (sc *productScope) UpdateStockQuantity(ctx context.Context, productID, quantity int) (bool, error) {
	var product catalog.Product
	if err := sc.store.TxGet(sc.tx, productKey(productID), &product); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	product.StockQuantity = quantity
	if err := sc.store.TxUpdate(sc.tx, productKey(productID), &product); err != nil {
		return false, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	return true, nil
}

func (sc *productScope) Commit() error {
	if err := sc.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stock update: %w", err)
	}
	return nil
}

func (sc *productScope) Discard() {
	sc.tx.Discard()
}
