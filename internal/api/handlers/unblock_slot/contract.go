package unblock_slot

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

type SlotBlockService interface {
	UnblockSlot(ctx context.Context, caller domain.Caller, req models.UnblockSlotRequest) (bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
