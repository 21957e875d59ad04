package domain

// ============================================================
// Category taxonomy — coleções "categories" / "subcategories"
// ============================================================

// Category classifies merchants; populated by the offline seeder.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Icon     string `json:"icon,omitempty"`
}

// Subcategory is one child of a category.
type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
}
