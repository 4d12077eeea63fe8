package block_batch

import "github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"

// BatchRequest HTTP request model
type BatchRequest struct {
	Items []models.BlockItem `json:"items"`
}
