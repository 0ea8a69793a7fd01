package domain

import "time"

// Kind определяет тип загруженного файла
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Upload представляет запись о загруженном файле.
// StorageKey неизменяем после создания; Title — единственное поле,
// которое пользователь может менять после загрузки.
type Upload struct {
	ID           int64     `json:"id" db:"id"`
	StorageKey   string    `json:"storage_key" db:"storage_key"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	Kind         Kind      `json:"kind" db:"kind"`
	Title        *string   `json:"title,omitempty" db:"title"`
	OriginalName string    `json:"original_name" db:"original_name"`
	FileURL      string    `json:"file_url" db:"file_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FileDownload содержит байты файла вместе с метаданными для отдачи клиенту
type FileDownload struct {
	Upload      *Upload
	Data        []byte
	ContentType string
}

// Decision представляет результат проверки прав доступа.
// Значение вычисляется заново на каждый запрос и нигде не сохраняется.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Причины отказа в доступе
const (
	ReasonOK           = "ok"
	ReasonAuthRequired = "auth_required"
	ReasonNotApproved  = "not_approved"
	ReasonForbidden    = "forbidden"
	ReasonNotFound     = "not_found"
)

// Allow возвращает положительное решение
func Allow() Decision {
	return Decision{Allowed: true, Reason: ReasonOK}
}

// Deny возвращает отрицательное решение с указанной причиной
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
