package models

import (
	"time"

	"github.com/google/uuid"
)

// Tournament is a bracket whose teams get auctioned off, e.g. one
// year's March Madness field.
type Tournament struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Season    string    `json:"season"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedAt time.Time `json:"created_at"`
}
