package catalog

// Product is the only catalog entity. ID is assigned on create and never changes.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"notblank"`
	InStock     *bool    `json:"inStock" validate:"required"`
}

func (req CreateProductRequest) product(id string) Product {
	return Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		InStock:     *req.InStock,
	}
}

// UpdateProductRequest is a partial update; nil fields keep their stored
// value. It has no ID field, so an "id" in the body is ignored.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,notblank"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,notblank"`
	InStock     *bool    `json:"inStock"`
}

func (req UpdateProductRequest) applyTo(p Product) Product {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	return p
}
