package query

import (
	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// InventoryReportQuery represents the query for the inventory report
type InventoryReportQuery struct{}

// InventoryReportHandler handles the inventory report query
type InventoryReportHandler struct {
	repo domain.MenuRepository
}

// NewInventoryReportHandler creates a new inventory report handler
func NewInventoryReportHandler(repo domain.MenuRepository) *InventoryReportHandler {
	return &InventoryReportHandler{repo: repo}
}

// Handle executes the inventory report query
func (h *InventoryReportHandler) Handle(InventoryReportQuery) (*domain.InventoryCounts, error) {
	return h.repo.InventoryReport()
}
