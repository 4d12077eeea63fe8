package block_batch

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

type SlotBlockService interface {
	BlockMultipleSlots(ctx context.Context, caller domain.Caller, items []models.BlockItem) (*models.BatchResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
