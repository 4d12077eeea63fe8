package slotblocks

import (
	"sort"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

type changeKey struct {
	venueID int64
	date    string
}

// changeSet группирует изменённые слоты пакета по (площадка, дата) для одного события на группу
type changeSet struct {
	order []changeKey
	dates map[changeKey]time.Time
	times map[changeKey][]types.TimeString
}

func newChangeSet() *changeSet {
	return &changeSet{
		dates: make(map[changeKey]time.Time),
		times: make(map[changeKey][]types.TimeString),
	}
}

func (c *changeSet) add(venueID int64, date time.Time, slotTime types.TimeString) {
	key := changeKey{venueID: venueID, date: domain.FormatDate(date)}
	if _, ok := c.dates[key]; !ok {
		c.order = append(c.order, key)
		c.dates[key] = date
	}
	c.times[key] = append(c.times[key], slotTime)
}

func (c *changeSet) each(fn func(venueID int64, date time.Time, times []types.TimeString)) {
	for _, key := range c.order {
		times := c.times[key]
		sort.Slice(times, func(i, j int) bool { return times[i].IsBefore(times[j]) })
		fn(key.venueID, c.dates[key], times)
	}
}
