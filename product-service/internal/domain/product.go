package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Images      []string
	Artisan     string
	Category    string
	CreatedAt   time.Time
}

// ImageURL is the primary image, used as the cart thumbnail.
func (p *Product) ImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
