package domain

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Category    string  `json:"categoria,omitempty"`
	Description string  `json:"descripcion,omitempty"`
	ImageURL    string  `json:"imagen_url,omitempty"`
}

// ProductPage is one page of GET /productos.
type ProductPage struct {
	Items      []Product `json:"items"`
	TotalPages int       `json:"total_pages"`
	Page       int       `json:"page,omitempty"`
	Size       int       `json:"size,omitempty"`
}

// Filters are the last-used catalog search terms, persisted under "filters".
type Filters struct {
	Query    string `json:"q,omitempty"`
	Category string `json:"cat,omitempty"`
}
