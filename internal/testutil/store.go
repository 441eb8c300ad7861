// Package testutil implementaciones en memoria de los puertos para tests de casos de uso.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

// Faults errores inyectables por operación (nil = comportamiento normal).
type Faults struct {
	IncrementStock     error
	CreateOrder        error
	CreatePurchase     error
	ListSales          error
	CreateNotification error
	CreateAlert        error
}

type saleRow struct {
	ownerID   string
	productID string
	point     entity.DailySales
}

type state struct {
	products      map[string]*entity.Product
	sellers       map[string]*entity.Seller
	sales         []saleRow
	orders        map[string]*entity.Order
	purchases     []*entity.Purchase
	alerts        map[string]*entity.AnomalyAlert
	notifications map[string]*entity.Notification
}

func newState() *state {
	return &state{
		products:      map[string]*entity.Product{},
		sellers:       map[string]*entity.Seller{},
		orders:        map[string]*entity.Order{},
		alerts:        map[string]*entity.AnomalyAlert{},
		notifications: map[string]*entity.Notification{},
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.products {
		p := *v
		cp.products[k] = &p
	}
	for k, v := range s.sellers {
		x := *v
		cp.sellers[k] = &x
	}
	cp.sales = append(cp.sales, s.sales...)
	for k, v := range s.orders {
		o := *v
		cp.orders[k] = &o
	}
	for _, v := range s.purchases {
		p := *v
		cp.purchases = append(cp.purchases, &p)
	}
	for k, v := range s.alerts {
		a := *v
		cp.alerts[k] = &a
	}
	for k, v := range s.notifications {
		n := *v
		cp.notifications[k] = &n
	}
	return cp
}

// Store base de datos en memoria. Run aplica las escrituras de la transacción
// solo si fn termina sin error.
type Store struct {
	mu     sync.Mutex
	st     *state
	Faults *Faults
	Now    func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), Faults: &Faults{}, Now: time.Now}
}

// ─── Seed ────────────────────────────────────────────────────────────────────

// AddSeller registra un proveedor.
func (s *Store) AddSeller(seller *entity.Seller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *seller
	s.st.sellers[seller.ID] = &cp
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.st.products[p.ID] = &cp
}

// AddSales agrega ventas diarias de un producto (productID vacío = producto eliminado).
func (s *Store) AddSales(ownerID, productID string, points ...entity.DailySales) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.st.sales = append(s.st.sales, saleRow{ownerID: ownerID, productID: productID, point: p})
	}
}

// AddOrder inserta una orden tal cual.
func (s *Store) AddOrder(o *entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.st.orders[o.ID] = &cp
}

// AddAlert inserta una alerta tal cual.
func (s *Store) AddAlert(a *entity.AnomalyAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.st.alerts[a.ID] = &cp
}

// ─── Inspección ──────────────────────────────────────────────────────────────

// Product devuelve una copia del producto.
func (s *Store) Product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.st.products[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// Order devuelve una copia de la orden.
func (s *Store) Order(id string) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.st.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

// Orders devuelve todas las órdenes ordenadas por creación.
func (s *Store) Orders() []*entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Order, 0, len(s.st.orders))
	for _, o := range s.st.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Purchases devuelve las compras registradas.
func (s *Store) Purchases() []*entity.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Purchase, len(s.st.purchases))
	copy(out, s.st.purchases)
	return out
}

// Alerts devuelve todas las alertas.
func (s *Store) Alerts() []*entity.AnomalyAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AnomalyAlert, 0, len(s.st.alerts))
	for _, a := range s.st.alerts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Notifications devuelve las notificaciones del propietario ordenadas por creación.
func (s *Store) Notifications(ownerID string) []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notificationsLocked(ownerID)
}

func (s *Store) notificationsLocked(ownerID string) []*entity.Notification {
	out := make([]*entity.Notification, 0)
	for _, n := range s.st.notifications {
		if n.OwnerID == ownerID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ─── Transacción ─────────────────────────────────────────────────────────────

// Run ejecuta fn sobre una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
) error) error {
	s.mu.Lock()
	tx := &Store{st: s.st.clone(), Faults: s.Faults, Now: s.Now}
	s.mu.Unlock()

	if err := fn(tx.OrderRepo(), tx.ProductRepo(), tx.PurchaseRepo()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = tx.st
	return nil
}

func newID() string { return uuid.New().String() }

func sortedSeries(points []entity.DailySales) []entity.DailySales {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}
