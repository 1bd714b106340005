package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"grocer-service/internal/models"
)

// orderRow mirrors the orders archive table. Addresses are stored as
// JSON columns rather than flattened fields.
type orderRow struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	Subtotal          float64   `db:"subtotal"`
	DeliveryFee       float64   `db:"delivery_fee"`
	Tax               float64   `db:"tax"`
	Total             float64   `db:"total"`
	ShippingInfo      []byte    `db:"shipping_info"`
	BillingInfo       []byte    `db:"billing_info"`
	PaymentMethod     string    `db:"payment_method"`
	DeliveryOption    string    `db:"delivery_option"`
	Status            string    `db:"status"`
	EstimatedDelivery time.Time `db:"estimated_delivery"`
	CreatedAt         time.Time `db:"created_at"`
}

type orderItemRow struct {
	OrderID   string  `db:"order_id"`
	ProductID string  `db:"product_id"`
	Name      string  `db:"name"`
	Price     float64 `db:"price"`
	Image     string  `db:"image"`
	Quantity  int     `db:"quantity"`
}

// ArchiveOrder writes a placed order and its items to the archive inside
// a single transaction. Re-archiving an existing order id is a no-op so
// redelivered events stay harmless.
func (s *Store) ArchiveOrder(ctx context.Context, order *models.Order) error {
	shipping, err := json.Marshal(order.ShippingInfo)
	if err != nil {
		return fmt.Errorf("encode shipping info: %w", err)
	}
	billing, err := json.Marshal(order.BillingInfo)
	if err != nil {
		return fmt.Errorf("encode billing info: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, subtotal, delivery_fee, tax, total,
			shipping_info, billing_info, payment_method, delivery_option,
			status, estimated_delivery, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		order.ID, order.UserID, order.Subtotal, order.DeliveryFee, order.Tax, order.Total,
		shipping, billing, order.PaymentMethod, order.DeliveryOption,
		order.Status, order.EstimatedDelivery, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("archive order: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return tx.Commit()
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, image, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, item.ID, item.Name, item.Price, item.Image, item.Quantity)
		if err != nil {
			return fmt.Errorf("archive order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetArchivedOrder reconstructs an order from the archive. Serves as the
// read fallback when the persisted order list does not hold the id.
func (s *Store) GetArchivedOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var itemRows []orderItemRow
	if err := s.db.SelectContext(ctx, &itemRows,
		"SELECT * FROM order_items WHERE order_id = $1", orderID); err != nil {
		return nil, err
	}

	order := models.Order{
		ID:                row.ID,
		UserID:            row.UserID,
		Items:             make([]models.CartItem, 0, len(itemRows)),
		Subtotal:          row.Subtotal,
		DeliveryFee:       row.DeliveryFee,
		Tax:               row.Tax,
		Total:             row.Total,
		PaymentMethod:     row.PaymentMethod,
		DeliveryOption:    row.DeliveryOption,
		Status:            row.Status,
		EstimatedDelivery: row.EstimatedDelivery,
		CreatedAt:         row.CreatedAt,
	}
	if err := json.Unmarshal(row.ShippingInfo, &order.ShippingInfo); err != nil {
		return nil, fmt.Errorf("decode shipping info: %w", err)
	}
	if err := json.Unmarshal(row.BillingInfo, &order.BillingInfo); err != nil {
		return nil, fmt.Errorf("decode billing info: %w", err)
	}
	for _, it := range itemRows {
		order.Items = append(order.Items, models.CartItem{
			ID:       it.ProductID,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}

	return &order, nil
}

// UpdateArchivedStatus mirrors a status transition into the archive.
func (s *Store) UpdateArchivedStatus(ctx context.Context, orderID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
