package command

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spicehouse/menu-service/internal/sales/domain"
)

// RecordSaleCommand represents the command to record a sale. OrderRef is
// generated when absent.
type RecordSaleCommand struct {
	OrderRef     string
	DishID       uint
	Quantity     int
	PricePerItem float64
}

// RecordSaleHandler handles sale recording command
type RecordSaleHandler struct {
	repo domain.SalesRepository
}

// NewRecordSaleHandler creates a new record sale handler
func NewRecordSaleHandler(repo domain.SalesRepository) *RecordSaleHandler {
	return &RecordSaleHandler{repo: repo}
}

// Handle executes the record sale command
func (h *RecordSaleHandler) Handle(cmd RecordSaleCommand) (*domain.Sale, error) {
	if cmd.DishID == 0 {
		return nil, fmt.Errorf("invalid dish id")
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if cmd.PricePerItem < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	orderRef := cmd.OrderRef
	if orderRef == "" {
		orderRef = uuid.NewString()
	}

	sale := &domain.Sale{
		OrderRef:     orderRef,
		DishID:       cmd.DishID,
		Quantity:     cmd.Quantity,
		PricePerItem: cmd.PricePerItem,
	}

	if err := h.repo.Record(sale); err != nil {
		return nil, err
	}

	return sale, nil
}
