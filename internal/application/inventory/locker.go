package inventory

// ReorderLockKey clave del lock de reposición por (propietario, producto).
func ReorderLockKey(ownerID, productID string) string {
	return "reorder:" + ownerID + ":" + productID
}
