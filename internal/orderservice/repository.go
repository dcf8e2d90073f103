// Package orderservice implements the Order Service (§6): a Postgres-backed
// order store plus the CreateOrder/GetOrder/ListUserOrders/UpdateOrderStatus/
// HealthCheck gRPC surface, driving the Saga (C7) for order creation.
// Grounded, like internal/identityservice, on
// components/ledger/internal/adapters/postgres/account/account.postgresql.go
// for the repository shape.
package orderservice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/common/mpostgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderEntity = "Order"

// Repository provides persistence for Order records, satisfying
// internal/saga.OrderRepository (Create/Update) plus the read operations
// GetOrder/ListUserOrders need.
//
//go:generate mockgen --destination=repository.mock.go --package=orderservice . Repository
type Repository interface {
	Create(ctx context.Context, order mmodel.Order) (mmodel.Order, error)
	FindByID(ctx context.Context, orderID string) (mmodel.Order, error)
	FindByUser(ctx context.Context, userID string, pageSize, pageNumber int64) (mmodel.Page, error)
	Update(ctx context.Context, order mmodel.Order) (mmodel.Order, error)
}

// OrderPostgreSQLRepository is a Postgres-specific implementation of Repository.
type OrderPostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
	tableName  string
}

// NewOrderPostgreSQLRepository returns a new instance of
// OrderPostgreSQLRepository using the given Postgres connection.
func NewOrderPostgreSQLRepository(pc *mpostgres.PostgresConnection) *OrderPostgreSQLRepository {
	return &OrderPostgreSQLRepository{
		connection: pc,
		tableName:  "order_record",
	}
}

var orderColumns = []string{
	"id", "user_id", "items", "total_amount", "status", "saga_state",
	"shipping_address", "payment_method", "version", "created_at", "updated_at",
}

func scanOrderRow(row pgx.Row) (mmodel.Order, error) {
	var (
		o        mmodel.Order
		itemsRaw []byte
	)

	err := row.Scan(&o.ID, &o.UserID, &itemsRaw, &o.TotalAmount, &o.Status, &o.SagaState,
		&o.ShippingAddress, &o.PaymentMethod, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mmodel.Order{}, err
	}

	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "decode order items", err)
	}

	return o, nil
}

// Create persists a new Order, assigning it a fresh id and initial version.
// Called by the Saga (C7) in CreateOrder after the input check and before
// the user-validation step runs, so a mid-saga crash still leaves a
// recoverable row.
func (r *OrderPostgreSQLRepository) Create(ctx context.Context, order mmodel.Order) (mmodel.Order, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	order.ID = uuid.New().String()
	order.Version = 1
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	itemsRaw, err := json.Marshal(order.Items)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "encode order items", err)
	}

	insert := squirrel.Insert(r.tableName).
		Columns(orderColumns...).
		Values(order.ID, order.UserID, itemsRaw, order.TotalAmount, order.Status, order.SagaState,
			order.ShippingAddress, order.PaymentMethod, order.Version, order.CreatedAt, order.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := insert.ToSql()
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "build insert", err)
	}

	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "insert order", err)
	}

	return order, nil
}

// FindByID looks up an Order by its opaque id.
func (r *OrderPostgreSQLRepository) FindByID(ctx context.Context, orderID string) (mmodel.Order, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	sel := squirrel.Select(orderColumns...).
		From(r.tableName).
		Where(squirrel.Eq{"id": orderID}).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := sel.ToSql()
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "build select", err)
	}

	order, err := scanOrderRow(pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mmodel.Order{}, apperrors.NewNotFound(orderEntity, "order not found")
		}

		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "query order", err)
	}

	return order, nil
}

// FindByUser returns one page of a user's orders, newest first (§6:
// ListUserOrders).
func (r *OrderPostgreSQLRepository) FindByUser(ctx context.Context, userID string, pageSize, pageNumber int64) (mmodel.Page, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	if pageSize <= 0 {
		pageSize = 20
	}

	if pageNumber <= 0 {
		pageNumber = 1
	}

	countSel := squirrel.Select("count(*)").From(r.tableName).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	countQuery, countArgs, err := countSel.ToSql()
	if err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "build count", err)
	}

	var totalItems int64
	if err := pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalItems); err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "count orders", err)
	}

	sel := squirrel.Select(orderColumns...).
		From(r.tableName).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((pageNumber - 1) * pageSize)).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := sel.ToSql()
	if err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "build select", err)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "query orders", err)
	}
	defer rows.Close()

	var orders []mmodel.Order

	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "scan order", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return mmodel.Page{}, apperrors.Wrap(apperrors.KindUnexpected, "iterate orders", err)
	}

	totalPages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		totalPages++
	}

	return mmodel.Page{
		Orders:      orders,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		CurrentPage: pageNumber,
	}, nil
}

// Update persists changes to an existing Order under optimistic concurrency,
// the same Version-keyed check internal/identityservice.Repository.Update
// performs, used both by the Saga (C7) for its state transitions and by
// UpdateOrderStatus for caller-initiated transitions.
func (r *OrderPostgreSQLRepository) Update(ctx context.Context, order mmodel.Order) (mmodel.Order, error) {
	pool, err := r.connection.GetPool(ctx)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "connect to postgres", err)
	}

	order.UpdatedAt = time.Now().UTC()
	newVersion := order.Version + 1

	itemsRaw, err := json.Marshal(order.Items)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "encode order items", err)
	}

	update := squirrel.Update(r.tableName).
		Set("items", itemsRaw).
		Set("total_amount", order.TotalAmount).
		Set("status", order.Status).
		Set("saga_state", order.SagaState).
		Set("shipping_address", order.ShippingAddress).
		Set("payment_method", order.PaymentMethod).
		Set("version", newVersion).
		Set("updated_at", order.UpdatedAt).
		Where(squirrel.Eq{"id": order.ID, "version": order.Version}).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := update.ToSql()
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "build update", err)
	}

	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return mmodel.Order{}, apperrors.Wrap(apperrors.KindUnexpected, "update order", err)
	}

	if tag.RowsAffected() == 0 {
		return mmodel.Order{}, apperrors.NewVersionConflict(orderEntity)
	}

	order.Version = newVersion

	return order, nil
}
