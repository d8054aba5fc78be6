package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	menudomain "github.com/spicehouse/menu-service/internal/menu/domain"
	menurepo "github.com/spicehouse/menu-service/internal/menu/repository"
	"github.com/spicehouse/menu-service/internal/sales/domain"
)

func newTestRepo(t *testing.T) (*GormSalesRepository, *menurepo.GormMenuRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	menuRepo := menurepo.NewGormMenuRepository(db)
	require.NoError(t, menuRepo.AutoMigrate())

	repo := NewGormSalesRepository(db)
	require.NoError(t, repo.AutoMigrate())

	return repo, menuRepo
}

func TestRecordDecrementsStock(t *testing.T) {
	repo, menuRepo := newTestRepo(t)

	dish := &menudomain.Dish{Name: "Onion Pakoda", CategoryID: 1, Availability: true, Stock: 10}
	require.NoError(t, menuRepo.Create(dish))

	sale := &domain.Sale{OrderRef: "order-1", DishID: dish.ID, Quantity: 4, PricePerItem: 5.5}
	require.NoError(t, repo.Record(sale))
	assert.NotZero(t, sale.ID)
	assert.False(t, sale.SaleDate.IsZero())

	got, err := menuRepo.FindByID(dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
	assert.True(t, got.Availability)
}

func TestRecordZeroStockMarksUnavailable(t *testing.T) {
	repo, menuRepo := newTestRepo(t)

	dish := &menudomain.Dish{Name: "Dal Tadka", CategoryID: 5, Availability: true, Stock: 3}
	require.NoError(t, menuRepo.Create(dish))

	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-1", DishID: dish.ID, Quantity: 3, PricePerItem: 8}))

	got, err := menuRepo.FindByID(dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.False(t, got.Availability)
}

func TestRecordInsufficientStock(t *testing.T) {
	repo, menuRepo := newTestRepo(t)

	dish := &menudomain.Dish{Name: "Dal Tadka", CategoryID: 5, Availability: true, Stock: 2}
	require.NoError(t, menuRepo.Create(dish))

	err := repo.Record(&domain.Sale{OrderRef: "order-1", DishID: dish.ID, Quantity: 5, PricePerItem: 8})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// nothing written
	got, err := menuRepo.FindByID(dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	sales, err := repo.FindByDishID(dish.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecordUnknownDish(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Record(&domain.Sale{OrderRef: "order-1", DishID: 9999, Quantity: 1, PricePerItem: 1})
	assert.ErrorIs(t, err, menudomain.ErrDishNotFound)
}

func TestFindByDishID(t *testing.T) {
	repo, menuRepo := newTestRepo(t)

	dish := &menudomain.Dish{Name: "Onion Pakoda", CategoryID: 1, Availability: true, Stock: 50}
	require.NoError(t, menuRepo.Create(dish))
	other := &menudomain.Dish{Name: "Dal Tadka", CategoryID: 5, Availability: true, Stock: 50}
	require.NoError(t, menuRepo.Create(other))

	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-1", DishID: dish.ID, Quantity: 2, PricePerItem: 5}))
	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-2", DishID: dish.ID, Quantity: 1, PricePerItem: 5}))
	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-3", DishID: other.ID, Quantity: 4, PricePerItem: 9}))

	sales, err := repo.FindByDishID(dish.ID)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	refs := []string{sales[0].OrderRef, sales[1].OrderRef}
	assert.ElementsMatch(t, []string{"order-1", "order-2"}, refs)
}

func TestReport(t *testing.T) {
	repo, menuRepo := newTestRepo(t)

	pakoda := &menudomain.Dish{Name: "Onion Pakoda", CategoryID: 1, Availability: true, Stock: 50}
	require.NoError(t, menuRepo.Create(pakoda))
	dal := &menudomain.Dish{Name: "Dal Tadka", CategoryID: 5, Availability: true, Stock: 50}
	require.NoError(t, menuRepo.Create(dal))

	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-1", DishID: pakoda.ID, Quantity: 2, PricePerItem: 5}))
	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-2", DishID: pakoda.ID, Quantity: 3, PricePerItem: 5}))
	require.NoError(t, repo.Record(&domain.Sale{OrderRef: "order-3", DishID: dal.ID, Quantity: 4, PricePerItem: 9}))

	report, err := repo.Report()
	require.NoError(t, err)
	assert.InDelta(t, 2*5+3*5+4*9, report.TotalRevenue, 0.001)
	assert.EqualValues(t, 9, report.TotalQuantity)
	require.Len(t, report.ByDish, 2)

	// ordered by revenue descending
	assert.Equal(t, "Dal Tadka", report.ByDish[0].DishName)
	assert.InDelta(t, 36, report.ByDish[0].Revenue, 0.001)
	assert.EqualValues(t, 4, report.ByDish[0].Quantity)
	assert.Equal(t, "Onion Pakoda", report.ByDish[1].DishName)
	assert.InDelta(t, 25, report.ByDish[1].Revenue, 0.001)
}

func TestReportEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	report, err := repo.Report()
	require.NoError(t, err)
	assert.Zero(t, report.TotalRevenue)
	assert.Zero(t, report.TotalQuantity)
	assert.Empty(t, report.ByDish)
}
