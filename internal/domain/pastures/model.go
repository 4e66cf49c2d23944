package pastures

import "time"

// Pasture es una ubicación nombrada del ranch; las vacas la referencian
// opcionalmente por id.
type Pasture struct {
	ID      string
	RanchID string
	Name    string

	CreatedAt time.Time
}
