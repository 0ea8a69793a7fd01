package domain

import "time"

// Действия, фиксируемые в журнале активности
const (
	ActionUpload         = "UPLOAD"
	ActionDelete         = "DELETE"
	ActionTitleUpdate    = "TITLE_UPDATE"
	ActionRegister       = "REGISTER"
	ActionManagerApprove = "MANAGER_APPROVE"
	ActionManagerReject  = "MANAGER_REJECT"
)

// ActivityLog представляет запись журнала активности.
// Журнал append-only: записи создаются как побочный эффект успешных
// мутирующих операций и никогда не участвуют в решениях о доступе.
type ActivityLog struct {
	ID          int64     `json:"id" db:"id"`
	ActorUserID int64     `json:"actor_user_id" db:"actor_user_id"`
	Action      string    `json:"action" db:"action"`
	Details     string    `json:"details" db:"details"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
