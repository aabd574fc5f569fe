package model

type ProductType string

const (
	TypeFragrance    ProductType = "fragrance"
	TypeAirFreshener ProductType = "air-freshener"
	TypeClothing     ProductType = "clothing"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Product is a catalog entry. The catalog is read-only: nothing in the
// storefront ever mutates a product.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"imageUrl"`
	Images      []string    `json:"images,omitempty"`
	Gender      Gender      `json:"gender,omitempty"`
	Type        ProductType `json:"type"`
}
