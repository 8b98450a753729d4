package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tanihub/agristore-api/internal/domain"
)

// MovementLister serves the stock movement ledger.
type MovementLister interface {
	ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error)
}

// HandleMovements returns the ledger, optionally filtered by product_id.
func HandleMovements(svc MovementLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		movements, err := svc.ListMovements(r.Context(), r.URL.Query().Get("product_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]movementResponse, 0, len(movements))
		for _, movement := range movements {
			resp = append(resp, movementResponse{
				ID:            movement.ID,
				ProductID:     movement.ProductID,
				ProductName:   movement.ProductName,
				Type:          string(movement.Type),
				Quantity:      movement.Quantity,
				Reason:        string(movement.Reason),
				PreviousStock: movement.PreviousStock,
				CurrentStock:  movement.CurrentStock,
				CreatedAt:     movement.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type movementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	PreviousStock int       `json:"previous_stock"`
	CurrentStock  int       `json:"current_stock"`
	CreatedAt     time.Time `json:"created_at"`
}
