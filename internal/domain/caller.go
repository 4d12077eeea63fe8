package domain

// Role роль вызывающего пользователя
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleVenueOwner Role = "venue_owner"
	RoleNone       Role = "none"
)

// ParseRole приводит строку к роли, неизвестные значения становятся RoleNone
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleVenueOwner:
		return Role(s)
	default:
		return RoleNone
	}
}

// Caller пользователь, от имени которого выполняется операция
type Caller struct {
	UserID int64
	Role   Role
}

// IsAdmin true для администратора платформы
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanManageVenue администратор управляет любой площадкой, владелец - только своей
func (c Caller) CanManageVenue(v *Venue) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleVenueOwner:
		return v != nil && v.IsOwnedBy(c.UserID)
	default:
		return false
	}
}
