package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage needs. Narrowing it to an
// interface lets tests substitute a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL. Mutating methods
// broadcast a change signal after commit so reactive streams re-emit.
type Storage struct {
	pool     pgxPool
	logger   *slog.Logger
	notifier *notifier
}

type productRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type itemRepository struct {
	storage *Storage
}

type statusRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger, notifier: newNotifier()}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Items() repository.ItemRepository {
	return &itemRepository{storage: s}
}

func (s *Storage) Status() repository.StatusRepository {
	return &statusRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            external_id TEXT NOT NULL,
            name TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL,
            attribute TEXT NOT NULL DEFAULT '',
            image_url TEXT,
            kind TEXT NOT NULL,
            UNIQUE (external_id, kind)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            status TEXT NOT NULL,
            total_price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (total_price >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id BIGSERIAL PRIMARY KEY,
            product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            count INT NOT NULL CHECK (count > 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (product_id, order_id)
        )`,
		`CREATE TABLE IF NOT EXISTS load_status (
            id SMALLINT PRIMARY KEY CHECK (id = 1),
            catalog_loaded BOOLEAN NOT NULL DEFAULT FALSE,
            suggested_loaded BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_orders_on_basket ON orders(status) WHERE status = 'ON_BASKET'`,
		`CREATE INDEX IF NOT EXISTS idx_items_order ON items(order_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// changed broadcasts a committed mutation to reactive stream subscribers.
func (s *Storage) changed() {
	if s.notifier != nil {
		s.notifier.broadcast()
	}
}

// --- ProductRepository implementation ---

const productColumns = `id, external_id, name, price, attribute, image_url, kind`

func (r *productRepository) GetByID(ctx context.Context, productID int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, productID).
		Scan(&p.ID, &p.ExternalID, &p.Name, &p.Price, &p.Attribute, &p.ImageURL, &p.Kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

const productsWithCountQuery = `SELECT p.id, p.external_id, p.name, p.price, p.attribute, p.image_url, p.kind,
              COALESCE(i.count, 0) AS count
       FROM products p
       LEFT JOIN items i ON i.product_id = p.id
        AND i.order_id = (SELECT o.id FROM orders o WHERE o.status='ON_BASKET' ORDER BY o.id DESC LIMIT 1)
       WHERE p.kind=$1
       ORDER BY p.id`

func (r *productRepository) ListWithCount(ctx context.Context, kind model.ProductKind) ([]model.ProductWithCount, error) {
	rows, err := r.storage.pool.Query(ctx, productsWithCountQuery, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ProductWithCount
	for rows.Next() {
		var pc model.ProductWithCount
		if err := rows.Scan(&pc.ID, &pc.ExternalID, &pc.Name, &pc.Price, &pc.Attribute, &pc.ImageURL, &pc.Kind, &pc.Count); err != nil {
			return nil, err
		}
		result = append(result, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) GetWithCount(ctx context.Context, productID int64) (*model.ProductWithCount, error) {
	const query = `SELECT p.id, p.external_id, p.name, p.price, p.attribute, p.image_url, p.kind,
                          COALESCE(i.count, 0) AS count
                   FROM products p
                   LEFT JOIN items i ON i.product_id = p.id
                    AND i.order_id = (SELECT o.id FROM orders o WHERE o.status='ON_BASKET' ORDER BY o.id DESC LIMIT 1)
                   WHERE p.id=$1`
	var pc model.ProductWithCount
	err := r.storage.pool.QueryRow(ctx, query, productID).
		Scan(&pc.ID, &pc.ExternalID, &pc.Name, &pc.Price, &pc.Attribute, &pc.ImageURL, &pc.Kind, &pc.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &pc, nil
}

func (r *productRepository) InsertFirstTime(ctx context.Context, records []model.CatalogRecord, kind model.ProductKind) error {
	const ensureStatus = `INSERT INTO load_status (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	const upsertProduct = `INSERT INTO products (external_id, name, price, attribute, image_url, kind)
                           VALUES ($1, $2, $3, $4, $5, $6)
                           ON CONFLICT (external_id, kind) DO UPDATE
                           SET name=EXCLUDED.name, price=EXCLUDED.price,
                               attribute=EXCLUDED.attribute, image_url=EXCLUDED.image_url`

	var flagUpdate string
	switch kind {
	case model.KindCatalogItem:
		flagUpdate = `UPDATE load_status SET catalog_loaded=TRUE WHERE id=1`
	case model.KindSuggestedItem:
		flagUpdate = `UPDATE load_status SET suggested_loaded=TRUE WHERE id=1`
	default:
		return fmt.Errorf("unknown product kind %q", kind)
	}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureStatus); err != nil {
			return err
		}
		for _, rec := range records {
			if _, err := tx.Exec(ctx, upsertProduct, rec.ExternalID, rec.Name, rec.Price, rec.Attribute, rec.ImageURL, kind); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, flagUpdate); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.storage.changed()
	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) GetByStatus(ctx context.Context, status model.OrderStatus) (*model.Order, error) {
	const query = `SELECT id, status, total_price FROM orders WHERE status=$1 ORDER BY id DESC LIMIT 1`
	var o model.Order
	err := r.storage.pool.QueryRow(ctx, query, status).Scan(&o.ID, &o.Status, &o.TotalPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FinalizeOrder(ctx context.Context, orderID int64, target model.OrderStatus) error {
	const query = `UPDATE orders SET total_price=0, status=$1 WHERE id=$2`
	if _, err := r.storage.pool.Exec(ctx, query, target, orderID); err != nil {
		return err
	}
	r.storage.changed()
	return nil
}

func (r *orderRepository) CancelActive(ctx context.Context) (bool, error) {
	cancelled := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectActive = `SELECT id FROM orders WHERE status='ON_BASKET' ORDER BY id DESC LIMIT 1 FOR UPDATE`
		var orderID int64
		if err := tx.QueryRow(ctx, selectActive).Scan(&orderID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		const finish = `UPDATE orders SET total_price=0, status=$1 WHERE id=$2`
		if _, err := tx.Exec(ctx, finish, model.OrderStatusFinished, orderID); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if cancelled {
		r.storage.changed()
	}
	return cancelled, nil
}

func (r *orderRepository) GetBasketDetail(ctx context.Context) (*model.BasketDetail, error) {
	order, err := r.GetByStatus(ctx, model.OrderStatusOnBasket)
	if err != nil {
		return nil, err
	}

	const query = `SELECT i.id, i.product_id, i.order_id, i.count, i.created_at,
                          p.id, p.external_id, p.name, p.price, p.attribute, p.image_url, p.kind
                   FROM items i
                   JOIN products p ON p.id = i.product_id
                   WHERE i.order_id=$1
                   ORDER BY i.created_at`
	rows, err := r.storage.pool.Query(ctx, query, order.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail := &model.BasketDetail{Order: *order}
	for rows.Next() {
		var iw model.ItemWithProduct
		if err := rows.Scan(
			&iw.Item.ID, &iw.Item.ProductID, &iw.Item.OrderID, &iw.Item.Count, &iw.Item.CreatedAt,
			&iw.Product.ID, &iw.Product.ExternalID, &iw.Product.Name, &iw.Product.Price,
			&iw.Product.Attribute, &iw.Product.ImageURL, &iw.Product.Kind,
		); err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, iw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

// --- ItemRepository implementation ---

func (r *itemRepository) Get(ctx context.Context, productID, orderID int64) (*model.Item, error) {
	const query = `SELECT id, product_id, order_id, count, created_at FROM items WHERE product_id=$1 AND order_id=$2`
	var item model.Item
	err := r.storage.pool.QueryRow(ctx, query, productID, orderID).
		Scan(&item.ID, &item.ProductID, &item.OrderID, &item.Count, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Storage) addToBasketTx(ctx context.Context, tx pgx.Tx, productID, orderID int64, unitPrice decimal.Decimal) error {
	const upsertItem = `INSERT INTO items (product_id, order_id, count)
                        VALUES ($1, $2, 1)
                        ON CONFLICT (product_id, order_id) DO UPDATE SET count = items.count + 1`
	if _, err := tx.Exec(ctx, upsertItem, productID, orderID); err != nil {
		return err
	}

	const addPrice = `UPDATE orders SET total_price = total_price + $1 WHERE id=$2`
	if _, err := tx.Exec(ctx, addPrice, unitPrice, orderID); err != nil {
		return err
	}
	return nil
}

func (s *Storage) decrementItemTx(ctx context.Context, tx pgx.Tx, productID, orderID int64, unitPrice decimal.Decimal) error {
	const lockItem = `SELECT count FROM items WHERE product_id=$1 AND order_id=$2 FOR UPDATE`
	var count int
	if err := tx.QueryRow(ctx, lockItem, productID, orderID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Stale double-decrement, nothing to do.
			return nil
		}
		return err
	}

	if count <= 1 {
		const deleteItem = `DELETE FROM items WHERE product_id=$1 AND order_id=$2`
		if _, err := tx.Exec(ctx, deleteItem, productID, orderID); err != nil {
			return err
		}
	} else {
		const decrement = `UPDATE items SET count = count - 1 WHERE product_id=$1 AND order_id=$2`
		if _, err := tx.Exec(ctx, decrement, productID, orderID); err != nil {
			return err
		}
	}

	const subtractPrice = `UPDATE orders SET total_price = GREATEST(total_price - $1, 0) WHERE id=$2`
	if _, err := tx.Exec(ctx, subtractPrice, unitPrice, orderID); err != nil {
		return err
	}
	return nil
}

func (r *itemRepository) AddToBasket(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return r.storage.addToBasketTx(ctx, tx, productID, orderID, unitPrice)
	})
	if err != nil {
		return err
	}
	r.storage.changed()
	return nil
}

func (r *itemRepository) DecrementItem(ctx context.Context, productID, orderID int64, unitPrice decimal.Decimal) error {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return r.storage.decrementItemTx(ctx, tx, productID, orderID, unitPrice)
	})
	if err != nil {
		return err
	}
	r.storage.changed()
	return nil
}

func (r *itemRepository) UpdateItemCount(ctx context.Context, productID int64, delta int) error {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		orderID, err := resolveActiveOrderTx(ctx, tx)
		if err != nil {
			return err
		}

		const priceQuery = `SELECT price FROM products WHERE id=$1`
		var unitPrice decimal.Decimal
		if err := tx.QueryRow(ctx, priceQuery, productID).Scan(&unitPrice); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if delta > 0 {
			return r.storage.addToBasketTx(ctx, tx, productID, orderID, unitPrice)
		}
		return r.storage.decrementItemTx(ctx, tx, productID, orderID, unitPrice)
	})
	if err != nil {
		return err
	}
	r.storage.changed()
	return nil
}

// resolveActiveOrderTx locks the ON_BASKET order, creating it when absent.
// The partial unique index on orders(status) makes a lost create race abort
// instead of leaving two active orders.
func resolveActiveOrderTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	const selectActive = `SELECT id FROM orders WHERE status='ON_BASKET' ORDER BY id DESC LIMIT 1 FOR UPDATE`
	var orderID int64
	err := tx.QueryRow(ctx, selectActive).Scan(&orderID)
	if err == nil {
		return orderID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	const createOrder = `INSERT INTO orders (status, total_price) VALUES ('ON_BASKET', 0)
                         ON CONFLICT (status) WHERE status='ON_BASKET' DO NOTHING
                         RETURNING id`
	err = tx.QueryRow(ctx, createOrder).Scan(&orderID)
	if err == nil {
		return orderID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Lost the create race; the winner's row is committed or in flight.
	if err := tx.QueryRow(ctx, selectActive).Scan(&orderID); err != nil {
		return 0, err
	}
	return orderID, nil
}

// --- StatusRepository implementation ---

func (r *statusRepository) Get(ctx context.Context) (model.LoadStatus, error) {
	const query = `SELECT catalog_loaded, suggested_loaded FROM load_status WHERE id=1`
	var status model.LoadStatus
	err := r.storage.pool.QueryRow(ctx, query).Scan(&status.CatalogLoaded, &status.SuggestedLoaded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row yet means nothing was synced.
			return model.LoadStatus{}, nil
		}
		return model.LoadStatus{}, err
	}
	return status, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
