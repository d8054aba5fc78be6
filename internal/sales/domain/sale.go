package domain

import (
	"errors"
	"time"
)

// ErrInsufficientStock is returned when a sale asks for more units than
// the dish has in stock
var ErrInsufficientStock = errors.New("insufficient stock")

// Sale represents one sold line item of an order
type Sale struct {
	ID           uint      `json:"sale_id" gorm:"primaryKey"`
	OrderRef     string    `json:"order_ref" gorm:"index;not null"`
	DishID       uint      `json:"dish_id" gorm:"not null;index"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	PricePerItem float64   `json:"price_per_item" gorm:"not null"`
	SaleDate     time.Time `json:"sale_date" gorm:"autoCreateTime"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// DishSales is one aggregated report row
type DishSales struct {
	DishID   uint    `json:"dish_id"`
	DishName string  `json:"dish_name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// Report aggregates sales over all dishes
type Report struct {
	TotalRevenue  float64     `json:"total_revenue"`
	TotalQuantity int64       `json:"total_quantity"`
	ByDish        []DishSales `json:"by_dish"`
}

// SalesRepository defines the contract for sales data access
type SalesRepository interface {
	// Record inserts the sale and decrements the dish stock in one
	// transaction. A dish reaching zero stock is marked unavailable.
	Record(sale *Sale) error
	FindByDishID(dishID uint) ([]Sale, error)
	Report() (*Report, error)
}
