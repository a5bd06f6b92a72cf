package client

// FindByNameRequest represents a name lookup. When Page and Size are both nil
// every match is returned; otherwise a single 0-based page is returned.
type FindByNameRequest struct {
	Name string
	Page *int
	Size *int
}

// createInput holds the client fields checked before an insert.
type createInput struct {
	Name  string `validate:"required,max=255"`
	Email string `validate:"omitempty,email,max=255"`
	Phone string `validate:"omitempty,max=32"`
}

// updateInput holds the client fields checked before an update. Empty fields
// are left unchanged by the merge.
type updateInput struct {
	Name  string `validate:"omitempty,max=255"`
	Email string `validate:"omitempty,email,max=255"`
	Phone string `validate:"omitempty,max=32"`
}
