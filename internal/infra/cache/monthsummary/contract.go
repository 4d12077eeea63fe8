package monthsummary

// Metrics счётчик попаданий в кэш
type Metrics interface {
	IncCacheRequest(result string)
}
