package entity

// Seller proveedor al que se le emiten las órdenes de reposición.
type Seller struct {
	ID      string
	OwnerID string
	Name    string
}
