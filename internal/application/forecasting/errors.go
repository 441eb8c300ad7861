package forecasting

import (
	"fmt"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
)

var errEmptyForecast = fmt.Errorf("pronóstico vacío: %w", domain.ErrModelUnavailable)
