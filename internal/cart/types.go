package cart

// CartView is the serialized cart returned by the storefront endpoints.
// Amounts are fixed to two decimal places.
type CartView struct {
	Username   string     `json:"username"`
	OrderItems []ItemView `json:"order_items"`
	Total      string     `json:"total"`
}

// ItemView is one cart line in the storefront shape.
type ItemView struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ItemTotal string `json:"item_total"`
	Quantity  int    `json:"quantity"`
}
