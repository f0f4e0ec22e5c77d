package models

import "time"

// Product represents a product in the catalog.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductPatch holds the fields a client supplied on create or update.
// Nil fields are left untouched when merged over an existing product.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

// Apply merges the present fields of the patch over p. The ID is never changed.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
}

// PatchFromPayload builds a patch from a decoded JSON object. Values of the
// wrong type are skipped; the validation stage rejects them before this runs.
func PatchFromPayload(payload map[string]any) ProductPatch {
	var patch ProductPatch
	if v, ok := payload["name"].(string); ok {
		patch.Name = &v
	}
	if v, ok := payload["description"].(string); ok {
		patch.Description = &v
	}
	if v, ok := payload["price"].(float64); ok {
		patch.Price = &v
	}
	if v, ok := payload["category"].(string); ok {
		patch.Category = &v
	}
	if v, ok := payload["inStock"].(bool); ok {
		patch.InStock = &v
	}
	return patch
}

// ProductEventType names a change to the catalog.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after every successful mutation.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"productId"`
	Product    *Product         `json:"product,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
