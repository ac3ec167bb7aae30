package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents an expense/income category. Categories form a
// two-level hierarchy: a category with a ParentID is a subcategory and
// cannot itself have children.
type Category struct {
	ID        int32      `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Name      string     `json:"name"`
	ParentID  *int32     `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// CategoryRef identifies a category either by id or by its legacy
// free-text name. Older clients send the name; it is resolved to a
// canonical category id at the service boundary and never deeper.
type CategoryRef struct {
	ID   *int32
	Name string
}

// IsZero reports whether the ref carries neither an id nor a name
func (r CategoryRef) IsZero() bool {
	return r.ID == nil && r.Name == ""
}

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(userID uuid.UUID, id int32) (*Category, error)
	GetByName(userID uuid.UUID, name string) (*Category, error)
	GetAllByUser(userID uuid.UUID) ([]*Category, error)
	Update(userID uuid.UUID, id int32, name string, parentID *int32) (*Category, error)
	SoftDelete(userID uuid.UUID, id int32) error
	HasTransactions(userID uuid.UUID, id int32) (bool, int64, error)
}
