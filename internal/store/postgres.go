package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// postgresRepository persists one row per tenant with profile, products and
// orders as separate jsonb columns, so each sub-tree is written
// independently. The append/set/add/remove operations lock the row
// (SELECT ... FOR UPDATE) to serialize concurrent read-modify-write cycles.
type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a Repository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "slug"):
			return ErrDuplicateSlug
		case strings.Contains(pgErr.ConstraintName, "owner"):
			return ErrOwnerHasStore
		}
	}
	return err
}

func (r *postgresRepository) Create(ctx context.Context, s *MerchantStore) error {
	profile, products, orders, err := marshalAggregate(*s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stores (id, slug, owner_id, profile, products, orders)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, s.Profile.ID, s.Profile.StoreSlug, s.Profile.UserID, profile, products, orders)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("repository: failed to insert store: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*MerchantStore, error) {
	return r.getBy(ctx, "id", id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*MerchantStore, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *postgresRepository) getBy(ctx context.Context, column, value string) (*MerchantStore, error) {
	query := fmt.Sprintf(`SELECT profile, products, orders FROM stores WHERE %s = $1`, column)

	var profile, products, orders []byte
	err := r.db.QueryRow(ctx, query, value).Scan(&profile, &products, &orders)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select store by %s %q: %w", column, value, err)
	}
	return unmarshalAggregate(profile, products, orders)
}

func (r *postgresRepository) List(ctx context.Context) ([]MerchantStore, error) {
	query := `SELECT profile, products, orders FROM stores ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := make([]MerchantStore, 0)
	for rows.Next() {
		var profile, products, orders []byte
		if err := rows.Scan(&profile, &products, &orders); err != nil {
			return nil, fmt.Errorf("repository: failed to scan store row: %w", err)
		}
		s, err := unmarshalAggregate(profile, products, orders)
		if err != nil {
			return nil, err
		}
		stores = append(stores, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating stores: %w", err)
	}
	return stores, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id string, p StoreProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal profile: %w", err)
	}
	return r.setColumn(ctx, id, "profile", data)
}

func (r *postgresRepository) UpdateProducts(ctx context.Context, id string, products []Product) error {
	data, err := json.Marshal(nonNilProducts(products))
	if err != nil {
		return fmt.Errorf("repository: failed to marshal products: %w", err)
	}
	return r.setColumn(ctx, id, "products", data)
}

func (r *postgresRepository) UpdateOrders(ctx context.Context, id string, orders []Order) error {
	data, err := json.Marshal(nonNilOrders(orders))
	if err != nil {
		return fmt.Errorf("repository: failed to marshal orders: %w", err)
	}
	return r.setColumn(ctx, id, "orders", data)
}

func (r *postgresRepository) setColumn(ctx context.Context, id, column string, data []byte) error {
	query := fmt.Sprintf(`UPDATE stores SET %s = $1, updated_at = now() WHERE id = $2`, column)

	cmdTag, err := r.db.Exec(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update store %s: %w", column, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Replace(ctx context.Context, s MerchantStore) error {
	profile, products, orders, err := marshalAggregate(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE stores
		SET profile = $1, products = $2, orders = $3, updated_at = now()
		WHERE id = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, profile, products, orders, s.Profile.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to replace store: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) AppendOrder(ctx context.Context, storeID string, ord Order) error {
	return r.withLockedColumn(ctx, storeID, "orders", func(data []byte) ([]byte, error) {
		var orders []Order
		if err := json.Unmarshal(data, &orders); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal orders: %w", err)
		}
		orders = append([]Order{ord}, orders...)
		return json.Marshal(orders)
	})
}

func (r *postgresRepository) SetOrderStatus(ctx context.Context, storeID, orderID string, status OrderStatus) (bool, error) {
	found := false
	err := r.withLockedColumn(ctx, storeID, "orders", func(data []byte) ([]byte, error) {
		var orders []Order
		if err := json.Unmarshal(data, &orders); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal orders: %w", err)
		}
		for i := range orders {
			if orders[i].ID == orderID {
				orders[i].Status = status
				found = true
				break
			}
		}
		if !found {
			return nil, nil // no write
		}
		return json.Marshal(orders)
	})
	return found, err
}

func (r *postgresRepository) AddProduct(ctx context.Context, storeID string, p Product, limit int) error {
	return r.withLockedColumn(ctx, storeID, "products", func(data []byte) ([]byte, error) {
		var products []Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal products: %w", err)
		}
		if len(products) >= limit {
			return nil, ErrPlanLimitReached
		}
		products = append([]Product{p}, products...)
		return json.Marshal(products)
	})
}

func (r *postgresRepository) RemoveProduct(ctx context.Context, storeID, productID string) error {
	return r.withLockedColumn(ctx, storeID, "products", func(data []byte) ([]byte, error) {
		var products []Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal products: %w", err)
		}
		kept := products[:0:0]
		for _, existing := range products {
			if existing.ID != productID {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(products) {
			return nil, nil // nothing to delete, no write
		}
		return json.Marshal(nonNilProducts(kept))
	})
}

// withLockedColumn runs mutate over one jsonb column of a locked store row
// and writes the result back inside the same transaction. Returning a nil
// slice with a nil error skips the write.
func (r *postgresRepository) withLockedColumn(ctx context.Context, storeID, column string, mutate func([]byte) ([]byte, error)) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Str("store_id", storeID).Msg("repository: failed to rollback transaction")
			}
		}
	}()

	selectQuery := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1 FOR UPDATE`, column)

	var data []byte
	if err = tx.QueryRow(ctx, selectQuery, storeID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		err = fmt.Errorf("repository: failed to lock store row: %w", err)
		return err
	}

	updated, err := mutate(data)
	if err != nil {
		return err
	}
	if updated == nil {
		err = tx.Commit(ctx)
		return err
	}

	updateQuery := fmt.Sprintf(`UPDATE stores SET %s = $1, updated_at = now() WHERE id = $2`, column)
	if _, err = tx.Exec(ctx, updateQuery, updated, storeID); err != nil {
		err = fmt.Errorf("repository: failed to update store %s: %w", column, err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return err
}

func marshalAggregate(s MerchantStore) (profile, products, orders []byte, err error) {
	if profile, err = json.Marshal(s.Profile); err != nil {
		return nil, nil, nil, fmt.Errorf("repository: failed to marshal profile: %w", err)
	}
	if products, err = json.Marshal(nonNilProducts(s.Products)); err != nil {
		return nil, nil, nil, fmt.Errorf("repository: failed to marshal products: %w", err)
	}
	if orders, err = json.Marshal(nonNilOrders(s.Orders)); err != nil {
		return nil, nil, nil, fmt.Errorf("repository: failed to marshal orders: %w", err)
	}
	return profile, products, orders, nil
}

func unmarshalAggregate(profile, products, orders []byte) (*MerchantStore, error) {
	var s MerchantStore
	if err := json.Unmarshal(profile, &s.Profile); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(products, &s.Products); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal products: %w", err)
	}
	if err := json.Unmarshal(orders, &s.Orders); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal orders: %w", err)
	}
	return &s, nil
}

func nonNilProducts(in []Product) []Product {
	if in == nil {
		return []Product{}
	}
	return in
}

func nonNilOrders(in []Order) []Order {
	if in == nil {
		return []Order{}
	}
	return in
}
