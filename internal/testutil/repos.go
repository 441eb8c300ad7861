package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// ─── Product ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

// ProductRepo repositorio de productos sobre el store.
func (s *Store) ProductRepo() repository.ProductRepository { return productRepo{s} }

func (r productRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r productRepo) ListLowStock(_ context.Context, ownerID string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.st.products {
		if p.OwnerID == ownerID && p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r productRepo) IncrementStock(_ context.Context, ownerID, id string, delta int) (*entity.Product, error) {
	if err := r.s.Faults.IncrementStock; err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	p.Stock += delta
	p.UpdatedAt = r.s.Now()
	cp := *p
	return &cp, nil
}

// ─── Seller ──────────────────────────────────────────────────────────────────

type sellerRepo struct{ s *Store }

// SellerRepo repositorio de proveedores sobre el store.
func (s *Store) SellerRepo() repository.SellerRepository { return sellerRepo{s} }

func (r sellerRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	x, ok := r.s.st.sellers[id]
	if !ok || x.OwnerID != ownerID {
		return nil, nil
	}
	cp := *x
	return &cp, nil
}

// ─── Sale ────────────────────────────────────────────────────────────────────

type saleRepo struct{ s *Store }

// SaleRepo proveedor de historial de ventas sobre el store.
func (s *Store) SaleRepo() repository.SaleRepository { return saleRepo{s} }

func (r saleRepo) ListDailySales(_ context.Context, ownerID, productID string, since time.Time) ([]entity.DailySales, error) {
	if err := r.s.Faults.ListSales; err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.DailySales
	for _, row := range r.s.st.sales {
		if row.ownerID == ownerID && row.productID == productID && !row.point.Date.Before(since) {
			out = append(out, row.point)
		}
	}
	return sortedSeries(out), nil
}

func (r saleRepo) ListDailySalesByProduct(_ context.Context, ownerID string, since time.Time) ([]entity.ProductSalesSeries, error) {
	if err := r.s.Faults.ListSales; err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byProduct := map[string][]entity.DailySales{}
	for _, row := range r.s.st.sales {
		if row.ownerID == ownerID && !row.point.Date.Before(since) {
			byProduct[row.productID] = append(byProduct[row.productID], row.point)
		}
	}
	out := make([]entity.ProductSalesSeries, 0, len(byProduct))
	for id, pts := range byProduct {
		name := ""
		if p, ok := r.s.st.products[id]; ok {
			name = p.Name
		}
		out = append(out, entity.ProductSalesSeries{ProductID: id, ProductName: name, Points: sortedSeries(pts)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ─── Order ───────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

// OrderRepo repositorio de órdenes sobre el store. Respeta el índice único parcial de pending.
func (s *Store) OrderRepo() repository.OrderRepository { return orderRepo{s} }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	if err := r.s.Faults.CreateOrder; err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.st.orders {
		if x.OwnerID == o.OwnerID && x.ProductID == o.ProductID && x.Status == entity.OrderStatusPending {
			return domain.ErrPendingOrderExists
		}
	}
	if o.ID == "" {
		o.ID = newID()
	}
	cp := *o
	r.s.st.orders[o.ID] = &cp
	return nil
}

func (r orderRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok || o.OwnerID != ownerID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Order, error) {
	return r.GetByID(ctx, ownerID, id)
}

func (r orderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	x, ok := r.s.st.orders[o.ID]
	if !ok || x.OwnerID != o.OwnerID {
		return domain.ErrNotFound
	}
	x.Status = o.Status
	x.UpdatedAt = o.UpdatedAt
	return nil
}

func (r orderRepo) HasPending(_ context.Context, ownerID, productID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.st.orders {
		if x.OwnerID == ownerID && x.ProductID == productID && x.Status == entity.OrderStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r orderRepo) ListPending(_ context.Context, ownerID string) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, x := range r.s.st.orders {
		if x.OwnerID == ownerID && x.Status == entity.OrderStatusPending {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─── Purchase ────────────────────────────────────────────────────────────────

type purchaseRepo struct{ s *Store }

// PurchaseRepo repositorio de compras sobre el store.
func (s *Store) PurchaseRepo() repository.PurchaseRepository { return purchaseRepo{s} }

func (r purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if err := r.s.Faults.CreatePurchase; err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	cp := *p
	r.s.st.purchases = append(r.s.st.purchases, &cp)
	return nil
}

// ─── AnomalyAlert ────────────────────────────────────────────────────────────

type alertRepo struct{ s *Store }

// AlertRepo repositorio de alertas sobre el store.
func (s *Store) AlertRepo() repository.AnomalyAlertRepository { return alertRepo{s} }

func (r alertRepo) Create(_ context.Context, a *entity.AnomalyAlert) error {
	if err := r.s.Faults.CreateAlert; err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	cp := *a
	r.s.st.alerts[a.ID] = &cp
	return nil
}

func (r alertRepo) ExistsSince(_ context.Context, ownerID, productID, alertType string, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.st.alerts {
		if a.OwnerID == ownerID && a.ProductID == productID && a.Type == alertType && !a.Timestamp.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r alertRepo) DeleteOlderThan(_ context.Context, ownerID string, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.st.alerts {
		if a.OwnerID == ownerID && a.Timestamp.Before(before) {
			delete(r.s.st.alerts, id)
			n++
		}
	}
	return n, nil
}

func (r alertRepo) ListRecent(_ context.Context, ownerID string, limit int) ([]*entity.AnomalyAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AnomalyAlert
	for _, a := range r.s.st.alerts {
		if a.OwnerID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r alertRepo) Delete(_ context.Context, ownerID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.st.alerts[id]
	if !ok || a.OwnerID != ownerID {
		return false, nil
	}
	delete(r.s.st.alerts, id)
	return true, nil
}

// ─── Notification ────────────────────────────────────────────────────────────

type notificationRepo struct{ s *Store }

// NotificationRepo repositorio de notificaciones sobre el store.
func (s *Store) NotificationRepo() repository.NotificationRepository { return notificationRepo{s} }

func (r notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	if err := r.s.Faults.CreateNotification; err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = newID()
	}
	cp := *n
	r.s.st.notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) ListByOwner(_ context.Context, ownerID string, limit int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.s.notificationsLocked(ownerID)
	// más recientes primero
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r notificationRepo) MarkRead(_ context.Context, ownerID, id string) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.st.notifications[id]
	if !ok || n.OwnerID != ownerID {
		return nil, nil
	}
	n.Read = true
	cp := *n
	return &cp, nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.st.notifications {
		if n.OwnerID == ownerID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) Delete(_ context.Context, ownerID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.st.notifications[id]
	if !ok || n.OwnerID != ownerID {
		return false, nil
	}
	delete(r.s.st.notifications, id)
	return true, nil
}

func (r notificationRepo) CountUnread(_ context.Context, ownerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.st.notifications {
		if n.OwnerID == ownerID && !n.Read {
			count++
		}
	}
	return count, nil
}
