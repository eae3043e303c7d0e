package dtos

// CategoryRequest is the payload for creating or updating a category.
// ParentID is a UUID string, or null/absent for a root category.
type CategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=120"`
	ParentID *string `json:"parent_id"`
}

// CategoryDeleteRequest carries the flags for the destructive path.
// Confirm acknowledges the deletion prompt; Reparent moves any child
// categories to the root instead of rejecting the delete.
type CategoryDeleteRequest struct {
	Confirm  bool `form:"confirm"`
	Reparent bool `form:"reparent"`
}
