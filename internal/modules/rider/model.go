// README: Rider record: vehicle profile, availability, active assignment, counters.
package rider

import (
	"time"

	"chowline/internal/types"
)

type Rider struct {
	ID            types.ID  `json:"id"`
	UserID        types.ID  `json:"user_id"`
	VehicleType   string    `json:"vehicle_type"`
	VehicleNumber string    `json:"vehicle_number"`
	LicenseNumber string    `json:"license_number"`
	IsAvailable   bool      `json:"is_available"`
	ActiveOrderID *types.ID `json:"active_order_id,omitempty"`
	// TotalDeliveries and Earnings are written only by the dispatch
	// engine's complete operation.
	TotalDeliveries int         `json:"total_deliveries"`
	Earnings        types.Money `json:"earnings"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
