package dtos

// DraftFieldsRequest updates the editable fields of a product draft.
// Price travels as a string so decimal values survive JSON intact.
type DraftFieldsRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	CategoryID  *string `json:"category_id"`
}

// ImageOrderRequest carries the full replacement ordering for a draft's
// image list. It must be a permutation of the current links.
type ImageOrderRequest struct {
	Order []string `json:"order" binding:"required"`
}
