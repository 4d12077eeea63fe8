package block_slots

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

type SlotBlockService interface {
	BlockSlot(ctx context.Context, caller domain.Caller, req models.BlockSlotRequest) (*models.BlockResponse, error)
	BlockMultipleSlots(ctx context.Context, caller domain.Caller, items []models.BlockItem) (*models.BatchResult, error)
	BlockFullDay(ctx context.Context, caller domain.Caller, req models.BlockFullDayRequest) (*models.FullDayResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
