package domain

import "time"

// Role определяет роль пользователя в системе
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Status определяет статус подтверждения пользователя
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// User представляет пользователя хранилища документов.
// Разрешённая по запросу идентичность — это всегда свежая запись из БД,
// она никогда не кэшируется между запросами.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsApproved сообщает, подтверждён ли пользователь администратором
func (u *User) IsApproved() bool {
	return u != nil && u.Status == StatusApproved
}
