package realtime

// Metrics счётчик подключённых клиентов
type Metrics interface {
	AddRealtimeClients(delta int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
