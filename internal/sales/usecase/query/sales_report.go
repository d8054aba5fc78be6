package query

import (
	"github.com/spicehouse/menu-service/internal/sales/domain"
)

// SalesReportQuery represents the query for the aggregated sales report
type SalesReportQuery struct{}

// SalesReportHandler handles the sales report query
type SalesReportHandler struct {
	repo domain.SalesRepository
}

// NewSalesReportHandler creates a new sales report handler
func NewSalesReportHandler(repo domain.SalesRepository) *SalesReportHandler {
	return &SalesReportHandler{repo: repo}
}

// Handle executes the sales report query
func (h *SalesReportHandler) Handle(SalesReportQuery) (*domain.Report, error) {
	return h.repo.Report()
}
