package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	menudomain "github.com/spicehouse/menu-service/internal/menu/domain"
	"github.com/spicehouse/menu-service/internal/sales/domain"
)

// GormSalesRepository implements SalesRepository using GORM
type GormSalesRepository struct {
	db *gorm.DB
}

// NewGormSalesRepository creates a new GORM sales repository
func NewGormSalesRepository(db *gorm.DB) *GormSalesRepository {
	return &GormSalesRepository{db: db}
}

// AutoMigrate runs database migrations for the sales table
func (r *GormSalesRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Sale{})
}

// Record inserts the sale and decrements the dish stock in one
// transaction. The sale recording is the only multi-statement write in
// the system.
func (r *GormSalesRepository) Record(sale *domain.Sale) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var dish menudomain.Dish
		if err := tx.First(&dish, sale.DishID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return menudomain.ErrDishNotFound
			}
			return fmt.Errorf("failed to find dish: %w", err)
		}

		if dish.Stock < sale.Quantity {
			return domain.ErrInsufficientStock
		}

		dish.Stock -= sale.Quantity
		if dish.Stock == 0 {
			dish.Availability = false
		}
		if err := tx.Save(&dish).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		return nil
	})
}

// FindByDishID retrieves all sales of a dish
func (r *GormSalesRepository) FindByDishID(dishID uint) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	if err := r.db.Where("dish_id = ?", dishID).Order("sale_date").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	return sales, nil
}

// Report aggregates quantity and revenue per dish
func (r *GormSalesRepository) Report() (*domain.Report, error) {
	rows := []domain.DishSales{}
	err := r.db.Model(&domain.Sale{}).
		Select("sales.dish_id AS dish_id, dishes.name AS dish_name, SUM(sales.quantity) AS quantity, SUM(sales.quantity * sales.price_per_item) AS revenue").
		Joins("JOIN dishes ON dishes.id = sales.dish_id").
		Group("sales.dish_id, dishes.name").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	report := &domain.Report{ByDish: rows}
	for _, row := range rows {
		report.TotalRevenue += row.Revenue
		report.TotalQuantity += row.Quantity
	}
	return report, nil
}
