package entity

import "time"

// Sale registro inmutable de una venta. ProductID vacío indica que el producto fue eliminado.
type Sale struct {
	ID        string
	OwnerID   string
	ProductID string
	Date      time.Time
	Quantity  int
}

// DailySales cantidad vendida agregada por día (punto de la serie temporal).
type DailySales struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// ProductSalesSeries serie diaria de ventas de un producto, ordenada por fecha ascendente.
// ProductID vacío agrupa ventas cuya referencia de producto es nula o fue eliminada.
type ProductSalesSeries struct {
	ProductID   string
	ProductName string
	Points      []DailySales
}
