package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"woolcrafts-backend/events"
	"woolcrafts-backend/logging"
	"woolcrafts-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const customerCancelReason = "Cancelled by customer"

// Actor is the authenticated caller. A nil *Actor is a guest.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

func (a *Actor) owns(o *models.Order) bool {
	return a != nil && o.UserID != nil && *o.UserID == a.UserID
}

type OrderItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Size      string    `json:"size"`
	Image     string    `json:"image"`
}

// PlaceOrderInput mirrors the checkout form. Item price, name and image are
// display echoes only; the stored product is authoritative.
type PlaceOrderInput struct {
	CustomerName    string                 `json:"customerName"`
	Phone           string                 `json:"phone"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	Items           []OrderItemInput       `json:"items"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

type StatusUpdateInput struct {
	Status          string `json:"status"`
	PaymentStatus   string `json:"paymentStatus"`
	RejectionReason string `json:"rejectionReason"`
}

type PaymentUpdateInput struct {
	PaymentMethod   string `json:"paymentMethod"`
	TransactionID   string `json:"transactionId"`
	PaymentStatus   string `json:"paymentStatus"`
	RejectionReason string `json:"rejectionReason"`
	Status          string `json:"status"`
}

type OrderService struct {
	db     *gorm.DB
	events events.Publisher
}

func NewOrderService(db *gorm.DB, pub events.Publisher) *OrderService {
	return &OrderService{db: db, events: pub}
}

func itemLabel(it OrderItemInput) string {
	if n := strings.TrimSpace(it.Name); n != "" {
		return n
	}
	return it.ProductID.String()
}

// PlaceOrder validates every line against current stock, then inserts the order and
// decrements stock in one transaction. Either every line is reserved or nothing is written.
func (s *OrderService) PlaceOrder(ctx context.Context, actor *Actor, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, newError(InvalidInput, "Order items required")
	}

	ids := make([]uuid.UUID, 0, len(in.Items))
	for i := range in.Items {
		it := &in.Items[i]
		if it.ProductID == uuid.Nil {
			return nil, newError(InvalidInput, "Item %d is missing a product", i+1)
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		if it.Quantity < 0 {
			return nil, newError(InvalidInput, "Quantity for %q must be at least 1", itemLabel(*it))
		}
		ids = append(ids, it.ProductID)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	wanted := map[uuid.UUID]int{}
	lines := make([]pricedLine, 0, len(in.Items))
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, newError(NotFound, "Product %q not found", itemLabel(it))
		}

		size := strings.TrimSpace(it.Size)
		if len(p.SizeOptions) > 0 {
			if !p.SizeOptions.Contains(size) {
				return nil, newError(InvalidInput, "Please select a valid size for %q", p.Name)
			}
		} else {
			size = ""
		}

		wanted[p.ID] += it.Quantity
		if p.Stock < wanted[p.ID] {
			return nil, stockError(p.Stock, p.Name)
		}

		image := p.Image
		if image == "" && len(p.Images) > 0 {
			image = p.Images[0]
		}
		lines = append(lines, pricedLine{Price: p.Price, Quantity: it.Quantity})
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Size:      size,
			Quantity:  it.Quantity,
			Price:     p.Price,
			Image:     image,
		})
	}

	totals := computeTotals(lines)
	order := models.Order{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Phone:           strings.TrimSpace(in.Phone),
		ShippingAddress: in.ShippingAddress,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
	}
	if order.ShippingAddress.Country == "" {
		order.ShippingAddress.Country = models.DefaultCountry
	}
	if actor != nil {
		uid := actor.UserID
		order.UserID = &uid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserveStock(tx, wanted, byID); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if order.UserID != nil {
			return tx.Where("user_id = ?", *order.UserID).Delete(&models.CartItem{}).Error
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	logging.FromContext(ctx).Info("order placed", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
	s.publish(ctx, events.OrderPlaced, &order, nil)
	return &order, nil
}

func stockError(available int, name string) error {
	if available < 0 {
		available = 0
	}
	return newError(InsufficientStock, "Sorry! Only %d items of %q available in stock", available, name)
}

// reserveStock applies a guarded decrement per product so stock never goes negative,
// even when another order raced past the read-time check.
func reserveStock(tx *gorm.DB, wanted map[uuid.UUID]int, byID map[uuid.UUID]*models.Product) error {
	for _, id := range sortedIDs(wanted) {
		qty := wanted[id]
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", id, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Product
			if err := tx.Select("stock").First(&current, "id = ?", id).Error; err != nil {
				if isNotFound(err) {
					return newError(NotFound, "Product %q not found", byID[id].Name)
				}
				return err
			}
			return stockError(current.Stock, byID[id].Name)
		}
	}
	return nil
}

// restoreStock gives back the quantities of items. Products deleted since the
// order was placed are skipped.
func restoreStock(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []models.OrderItem) error {
	qty := map[uuid.UUID]int{}
	for _, it := range items {
		qty[it.ProductID] += it.Quantity
	}
	for _, id := range sortedIDs(qty) {
		res := tx.Model(&models.Product{}).Where("id = ?", id).Update("stock", gorm.Expr("stock + ?", qty[id]))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			logging.FromContext(ctx).Warn("stock not restored, product no longer exists", "order_id", orderID, "product_id", id)
		}
	}
	logging.FromContext(ctx).Info("stock restored", "order_id", orderID)
	return nil
}

// sortedIDs gives a stable lock order across concurrent transactions.
func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func loadOrder(tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "Order not found")
		}
		return nil, err
	}
	return &order, nil
}

// GetOrder returns guest orders to anyone holding the id; account orders only to
// their owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Order, error) {
	order, err := loadOrder(s.db.WithContext(ctx), id)
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !order.IsGuest() && !actor.owns(order) && !actor.IsAdmin() {
		return nil, newError(Forbidden, "You do not have access to this order")
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

// CancelOrder is the customer's own cancel. It only succeeds while the order is
// Pending; the status compare-and-swap makes stock restoration happen at most once.
func (s *OrderService) CancelOrder(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Order, error) {
	if actor == nil {
		return nil, newError(Unauthorized, "Access token required")
	}

	var cancelled *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if !actor.owns(order) {
			return newError(Forbidden, "You can only cancel your own orders")
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND status = ?", id, actor.UserID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":           models.OrderStatusCancelled,
				"payment_status":   models.PaymentStatusCancelled,
				"rejection_reason": customerCancelReason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			current, err := loadOrder(tx, id)
			if err != nil {
				return err
			}
			if current.Status == models.OrderStatusCancelled {
				return newError(AlreadyCancelled, "Order is already cancelled.")
			}
			return newError(InvalidInput, "Only pending orders can be cancelled. Your order is already %s", current.Status)
		}

		if err := restoreStock(ctx, tx, order.ID, order.Items); err != nil {
			return err
		}
		cancelled, err = loadOrder(tx, id)
		return err
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	s.publish(ctx, events.OrderCancelled, cancelled, map[string]interface{}{"by": "customer"})
	return cancelled, nil
}

// orderChange is one admin or payment edit. Status, when set, goes through the
// transition table.
type orderChange struct {
	status         *models.OrderStatus
	autoProcessing bool
	fields         map[string]interface{}
}

// SetStatus is the admin status/payment edit.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, in StatusUpdateInput) (*models.Order, error) {
	change := orderChange{fields: map[string]interface{}{}}

	if strings.TrimSpace(in.Status) != "" {
		st, err := models.ParseOrderStatus(in.Status)
		if err != nil {
			return nil, newError(InvalidInput, "Invalid order status %q", in.Status)
		}
		change.status = &st
	}
	if strings.TrimSpace(in.PaymentStatus) != "" {
		ps, err := models.ParsePaymentStatus(in.PaymentStatus)
		if err != nil {
			return nil, newError(InvalidInput, "Invalid payment status %q", in.PaymentStatus)
		}
		change.fields["payment_status"] = ps
	}
	if r := strings.TrimSpace(in.RejectionReason); r != "" {
		change.fields["rejection_reason"] = r
	}
	if change.status == nil && len(change.fields) == 0 {
		return nil, newError(InvalidInput, "Status or payment status is required")
	}

	return s.apply(ctx, id, change)
}

// UpdatePayment records payment details. Customers may only submit the payment
// method and transaction id; the remaining fields are admin-only.
func (s *OrderService) UpdatePayment(ctx context.Context, actor *Actor, id uuid.UUID, in PaymentUpdateInput) (*models.Order, error) {
	if _, err := s.GetOrder(ctx, actor, id); err != nil {
		return nil, err
	}

	change := orderChange{fields: map[string]interface{}{}}
	if v := strings.TrimSpace(in.PaymentMethod); v != "" {
		change.fields["payment_method"] = v
	}
	if v := strings.TrimSpace(in.TransactionID); v != "" {
		change.fields["transaction_id"] = v
	}

	adminOnly := strings.TrimSpace(in.PaymentStatus) != "" ||
		strings.TrimSpace(in.RejectionReason) != "" ||
		strings.TrimSpace(in.Status) != ""
	if adminOnly && !actor.IsAdmin() {
		return nil, newError(Forbidden, "Only administrators can change payment or order status")
	}

	if v := strings.TrimSpace(in.PaymentStatus); v != "" {
		ps, err := models.ParsePaymentStatus(v)
		if err != nil {
			return nil, newError(InvalidInput, "Invalid payment status %q", in.PaymentStatus)
		}
		change.fields["payment_status"] = ps
		change.autoProcessing = ps == models.PaymentStatusCompleted
	}
	if v := strings.TrimSpace(in.RejectionReason); v != "" {
		change.fields["rejection_reason"] = v
	}
	if v := strings.TrimSpace(in.Status); v != "" {
		st, err := models.ParseOrderStatus(v)
		if err != nil {
			return nil, newError(InvalidInput, "Invalid order status %q", in.Status)
		}
		change.status = &st
	}
	if change.status == nil && len(change.fields) == 0 {
		return nil, newError(InvalidInput, "No payment details provided")
	}

	return s.apply(ctx, id, change)
}

func (s *OrderService) apply(ctx context.Context, id uuid.UUID, change orderChange) (*models.Order, error) {
	var (
		before  models.OrderStatus
		updated *models.Order
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		before = order.Status

		next := order.Status
		if change.status != nil {
			target := *change.status
			switch {
			case target == order.Status:
				if target == models.OrderStatusCancelled {
					return newError(AlreadyCancelled, "Order is already cancelled.")
				}
			case !models.IsValidTransition(order.Status, target):
				return newError(InvalidInput, "Cannot change order status from %s to %s", order.Status, target)
			default:
				next = target
			}
		} else if change.autoProcessing && order.Status == models.OrderStatusPending {
			next = models.OrderStatusProcessing
		}

		updates := make(map[string]interface{}, len(change.fields)+1)
		for k, v := range change.fields {
			updates[k] = v
		}
		if next != order.Status {
			updates["status"] = next
		}
		if len(updates) == 0 {
			updated = order
			return nil
		}

		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", id, order.Status).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			current, err := loadOrder(tx, id)
			if err != nil {
				return err
			}
			if current.Status == models.OrderStatusCancelled && next == models.OrderStatusCancelled {
				return newError(AlreadyCancelled, "Order is already cancelled.")
			}
			return newError(Conflict, "Order was updated by someone else, please retry")
		}

		if next == models.OrderStatusCancelled && order.Status != models.OrderStatusCancelled {
			if err := restoreStock(ctx, tx, order.ID, order.Items); err != nil {
				return err
			}
		}
		updated, err = loadOrder(tx, id)
		return err
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	if updated.Status != before {
		extra := map[string]interface{}{"from": before}
		if updated.Status == models.OrderStatusCancelled {
			s.publish(ctx, events.OrderCancelled, updated, extra)
		} else {
			s.publish(ctx, events.OrderStatusChanged, updated, extra)
		}
	}
	return updated, nil
}

// DeleteOrder removes an order and returns its stock unless a cancellation already did.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}

		// Items first: order_items.order_id references orders.
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND status = ?", id, order.Status).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(Conflict, "Order was updated by someone else, please retry")
		}

		if order.Status != models.OrderStatusCancelled {
			if err := restoreStock(ctx, tx, order.ID, order.Items); err != nil {
				return err
			}
		}
		deleted = order
		return nil
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return err
		}
		return fmt.Errorf("delete order: %w", err)
	}

	s.publish(ctx, events.OrderDeleted, deleted, nil)
	return nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *models.Order, extra map[string]interface{}) {
	data := map[string]interface{}{
		"orderId":       o.ID,
		"userId":        o.UserID,
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
		"total":         o.Total,
		"items":         o.Items,
	}
	for k, v := range extra {
		data[k] = v
	}
	publishEvent(ctx, s.events, events.New(eventType, o.ID.String(), data))
}

// publishEvent is best-effort: the write has already committed.
func publishEvent(ctx context.Context, pub events.Publisher, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish event failed", "type", ev.Type, "key", ev.Key, "error", err)
	}
}
