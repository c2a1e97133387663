package model

// ListProductsResponse is the envelope returned by GET /products.
type ListProductsResponse struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Data    []Product `json:"data"`
}

// CreateProductResponse is the envelope returned by a successful POST /products.
type CreateProductResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Product `json:"data"`
}

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Endpoints lists the routes advertised by the info document.
type Endpoints struct {
	GetProducts string `json:"getProducts"`
	AddProduct  string `json:"addProduct"`
}

// InfoResponse is the document served at the root path.
type InfoResponse struct {
	Message   string    `json:"message"`
	Endpoints Endpoints `json:"endpoints"`
}

// NewListProductsResponse wraps products in a success envelope.
// A nil slice is reported as an empty array.
func NewListProductsResponse(products []Product) ListProductsResponse {
	if products == nil {
		products = []Product{}
	}
	return ListProductsResponse{
		Success: true,
		Count:   len(products),
		Data:    products,
	}
}

// APIInfo returns the static root document.
func APIInfo() InfoResponse {
	return InfoResponse{
		Message: "E-commerce API is running!",
		Endpoints: Endpoints{
			GetProducts: "GET /products",
			AddProduct:  "POST /products",
		},
	}
}
