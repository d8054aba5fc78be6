package domain

import "errors"

var (
	// ErrDishNotFound is returned when the target dish id has no row
	ErrDishNotFound = errors.New("dish not found")
	// ErrDuplicateDish is returned when a dish with the same name and
	// category already exists (composite unique constraint)
	ErrDuplicateDish = errors.New("dish with this name already exists in the category")
)

// Category represents a menu category. Categories are seeded at startup
// and never mutated by any endpoint.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}

// Dish represents a menu dish. Duplicate detection is enforced by a single
// storage-level composite unique index on (name, category_id).
type Dish struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;uniqueIndex:idx_dishes_name_category"`
	CategoryID   uint   `json:"category_id" gorm:"not null;uniqueIndex:idx_dishes_name_category"`
	Availability bool   `json:"availability" gorm:"not null"`
	Stock        int    `json:"stock" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (Dish) TableName() string {
	return "dishes"
}

// DishFilter narrows a dish listing. Nil fields are not applied.
type DishFilter struct {
	CategoryID   *uint
	Availability *bool
}

// InventoryCounts is the two-number inventory report
type InventoryCounts struct {
	InStock    int64 `json:"in_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// MenuRepository defines the contract for menu data access
type MenuRepository interface {
	Create(dish *Dish) error
	FindByID(id uint) (*Dish, error)
	FindAll(filter DishFilter) ([]Dish, error)
	FindOutOfStock() ([]Dish, error)
	Update(dish *Dish) error
	Delete(id uint) error
	MarkOutOfStock(id uint) error
	UpdateStock(id uint, stock int) error
	Count() (int64, error)
	InventoryReport() (*InventoryCounts, error)
}
