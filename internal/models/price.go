package models

// Location maps a service location to a display color
type Location struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Price maps a product (base service or add-on) to its per-location price
type Price struct {
	ID         int     `json:"id"`
	Product    string  `json:"product"`
	LocationID int     `json:"location_id"`
	Amount     float64 `json:"amount"`
}
