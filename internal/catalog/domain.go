// internal/catalog/domain.go
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog entry. Available is owned by the availability
// ledger and is only flipped through SetAvailable.
type Book struct {
	ID            uuid.UUID `json:"id"`
	ISBN          string    `json:"isbn,omitempty"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedYear int       `json:"published_year,omitempty"`
	Available     bool      `json:"available"`
	RegisteredBy  string    `json:"registered_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
