package get_month_summary

import (
	"context"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

type CalendarService interface {
	GetMonthSummary(ctx context.Context, venueID int64, year, month int) (*domain.MonthSummary, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
