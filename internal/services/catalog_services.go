package services

import "github.com/mkellijah10/Oillabz/internal/model"

// CatalogService is the read-only product catalog. Products are compiled
// in; there is no mutation API.
type CatalogService struct {
	products []model.Product
}

func NewCatalogService() *CatalogService {
	return &CatalogService{products: defaultProducts}
}

// NewCatalogServiceWith builds a catalog from an explicit product list.
func NewCatalogServiceWith(products []model.Product) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) All() []model.Product {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *CatalogService) ByID(id string) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *CatalogService) ByType(t model.ProductType) []model.Product {
	var out []model.Product
	for _, p := range s.products {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) ByTypeAndGender(t model.ProductType, g model.Gender) []model.Product {
	var out []model.Product
	for _, p := range s.products {
		if p.Type == t && p.Gender == g {
			out = append(out, p)
		}
	}
	return out
}

var defaultProducts = []model.Product{
	{
		ID:          "frag-001",
		Name:        "Midnight Oud",
		Description: "Deep oud and amber body oil, long-lasting wear.",
		Price:       24.99,
		Category:    "Body Oils",
		ImageURL:    "/images/midnight-oud.jpg",
		Gender:      model.GenderMale,
		Type:        model.TypeFragrance,
	},
	{
		ID:          "frag-002",
		Name:        "Vanilla Musk",
		Description: "Warm vanilla layered over soft white musk.",
		Price:       19.99,
		Category:    "Body Oils",
		ImageURL:    "/images/vanilla-musk.jpg",
		Gender:      model.GenderFemale,
		Type:        model.TypeFragrance,
	},
	{
		ID:          "frag-003",
		Name:        "Baccarat Type",
		Description: "Saffron and cedar impression oil.",
		Price:       29.99,
		Category:    "Body Oils",
		ImageURL:    "/images/baccarat-type.jpg",
		Gender:      model.GenderUnisex,
		Type:        model.TypeFragrance,
	},
	{
		ID:          "frag-004",
		Name:        "Egyptian Amber",
		Description: "Resinous amber with a honeyed drydown.",
		Price:       21.99,
		Category:    "Body Oils",
		ImageURL:    "/images/egyptian-amber.jpg",
		Gender:      model.GenderUnisex,
		Type:        model.TypeFragrance,
	},
	{
		ID:          "frag-005",
		Name:        "Coco Blossom",
		Description: "Jasmine, rose and a clean powdery base.",
		Price:       22.99,
		Category:    "Body Oils",
		ImageURL:    "/images/coco-blossom.jpg",
		Gender:      model.GenderFemale,
		Type:        model.TypeFragrance,
	},
	{
		ID:          "air-001",
		Name:        "Black Ice Car Freshener",
		Description: "Hanging car freshener, two-pack.",
		Price:       7.99,
		Category:    "Air Fresheners",
		ImageURL:    "/images/black-ice.jpg",
		Type:        model.TypeAirFreshener,
	},
	{
		ID:          "air-002",
		Name:        "Lavender Room Spray",
		Description: "8oz room and linen spray.",
		Price:       12.99,
		Category:    "Air Fresheners",
		ImageURL:    "/images/lavender-spray.jpg",
		Type:        model.TypeAirFreshener,
	},
	{
		ID:          "cloth-001",
		Name:        "Oillabz Logo Tee",
		Description: "Heavyweight cotton tee, screen-printed logo.",
		Price:       25.00,
		Category:    "Apparel",
		ImageURL:    "/images/logo-tee.jpg",
		Gender:      model.GenderUnisex,
		Type:        model.TypeClothing,
	},
	{
		ID:          "cloth-002",
		Name:        "Oillabz Hoodie",
		Description: "Fleece-lined pullover hoodie.",
		Price:       45.00,
		Category:    "Apparel",
		ImageURL:    "/images/hoodie.jpg",
		Gender:      model.GenderUnisex,
		Type:        model.TypeClothing,
	},
}
