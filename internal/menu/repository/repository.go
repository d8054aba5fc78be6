package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// GormMenuRepository implements MenuRepository using GORM
type GormMenuRepository struct {
	db *gorm.DB
}

// NewGormMenuRepository creates a new GORM menu repository
func NewGormMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{db: db}
}

// AutoMigrate runs database migrations for the menu tables
func (r *GormMenuRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Category{}, &domain.Dish{})
}

// Create inserts a new dish. A composite unique-index violation on
// (name, category_id) surfaces as ErrDuplicateDish.
func (r *GormMenuRepository) Create(dish *domain.Dish) error {
	if err := r.db.Create(dish).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateDish
		}
		return fmt.Errorf("failed to create dish: %w", err)
	}
	return nil
}

// FindByID retrieves a dish by id
func (r *GormMenuRepository) FindByID(id uint) (*domain.Dish, error) {
	var dish domain.Dish
	if err := r.db.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDishNotFound
		}
		return nil, fmt.Errorf("failed to find dish: %w", err)
	}
	return &dish, nil
}

// FindAll retrieves dishes matching the optional filter predicates
func (r *GormMenuRepository) FindAll(filter domain.DishFilter) ([]domain.Dish, error) {
	dishes := []domain.Dish{}
	query := r.db.Order("id")

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Availability != nil {
		query = query.Where("availability = ?", *filter.Availability)
	}

	if err := query.Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to find dishes: %w", err)
	}
	return dishes, nil
}

// FindOutOfStock retrieves all dishes with availability false
func (r *GormMenuRepository) FindOutOfStock() ([]domain.Dish, error) {
	dishes := []domain.Dish{}
	if err := r.db.Where("availability = ?", false).Order("id").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to find out-of-stock dishes: %w", err)
	}
	return dishes, nil
}

// Update overwrites all mutable fields of a dish
func (r *GormMenuRepository) Update(dish *domain.Dish) error {
	if err := r.db.Save(dish).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateDish
		}
		return fmt.Errorf("failed to update dish: %w", err)
	}
	return nil
}

// Delete removes a dish row
func (r *GormMenuRepository) Delete(id uint) error {
	result := r.db.Delete(&domain.Dish{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete dish: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDishNotFound
	}
	return nil
}

// MarkOutOfStock sets availability to false, leaving other fields unchanged
func (r *GormMenuRepository) MarkOutOfStock(id uint) error {
	result := r.db.Model(&domain.Dish{}).Where("id = ?", id).Update("availability", false)
	if result.Error != nil {
		return fmt.Errorf("failed to mark dish out of stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDishNotFound
	}
	return nil
}

// UpdateStock sets the stock quantity of a dish
func (r *GormMenuRepository) UpdateStock(id uint, stock int) error {
	result := r.db.Model(&domain.Dish{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDishNotFound
	}
	return nil
}

// Count returns the total number of dishes
func (r *GormMenuRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Dish{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count dishes: %w", err)
	}
	return count, nil
}

// InventoryReport counts in-stock and out-of-stock dishes
func (r *GormMenuRepository) InventoryReport() (*domain.InventoryCounts, error) {
	var report domain.InventoryCounts
	if err := r.db.Model(&domain.Dish{}).Where("availability = ?", true).Count(&report.InStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count in-stock dishes: %w", err)
	}
	if err := r.db.Model(&domain.Dish{}).Where("availability = ?", false).Count(&report.OutOfStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count out-of-stock dishes: %w", err)
	}
	return &report, nil
}

var seedCategories = []domain.Category{
	{ID: 1, Name: "Appetizer"},
	{ID: 2, Name: "Veg Curries"},
	{ID: 3, Name: "Pickles"},
	{ID: 4, Name: "Veg Fry"},
	{ID: 5, Name: "Dal"},
	{ID: 6, Name: "Non Veg Curries"},
	{ID: 7, Name: "Veg Rice"},
	{ID: 8, Name: "Non-Veg Rice"},
	{ID: 9, Name: "Veg Pulusu"},
	{ID: 10, Name: "Breads"},
	{ID: 11, Name: "Desserts"},
}

var seedDishes = []domain.Dish{
	{ID: 1, Name: "Onion Pakoda", CategoryID: 1, Availability: true, Stock: 10},
	{ID: 2, Name: "Mixed Veg Pakoda", CategoryID: 1, Availability: true, Stock: 15},
}

// Seed inserts the predefined categories and dishes if absent. Safe to run
// on every process start.
func (r *GormMenuRepository) Seed() error {
	onConflict := clause.OnConflict{DoNothing: true}

	if err := r.db.Clauses(onConflict).Create(&seedCategories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := r.db.Clauses(onConflict).Create(&seedDishes).Error; err != nil {
		return fmt.Errorf("failed to seed dishes: %w", err)
	}
	return nil
}
