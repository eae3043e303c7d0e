package dtos

// ProductUpdateRequest updates an already-persisted product.
// Price is a decimal string; a nil CategoryID clears the assignment.
type ProductUpdateRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"required"`
	Price       string  `json:"price" binding:"required"`
	CategoryID  *string `json:"category_id"`
}
