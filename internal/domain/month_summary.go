package domain

// MonthSummary даты месяца с блокировками и с активными бронированиями (YYYY-MM-DD)
type MonthSummary struct {
	VenueID      int64    `json:"venueId"`
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	BlockedDates []string `json:"blockedDates"`
	BookedDates  []string `json:"bookedDates"`
}
