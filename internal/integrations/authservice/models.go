package authservice

// ResolveResponse ответ сервиса авторизации на проверку токена
type ResolveResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"` // admin | venue_owner | любая другая роль без прав управления
}
