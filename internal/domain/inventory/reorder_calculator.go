package inventory

// SuggestedReorderQuantity implementa la cantidad de reposición (servicio de dominio).
// Cantidad = max(2 × UmbralReorden, DemandaPronosticada)
func SuggestedReorderQuantity(reorderThreshold, forecastedDemand int) int {
	minimum := 2 * reorderThreshold
	if forecastedDemand > minimum {
		return forecastedDemand
	}
	return minimum
}
