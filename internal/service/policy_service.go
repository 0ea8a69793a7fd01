package service

import (
	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

// PolicyService принимает решения о доступе к файлам.
// Все методы — чистые функции над уже загруженными записями:
// сервис не ходит в БД и не кэширует решения между запросами.
//
// Каждая операция перечисляет разрешённые роли явно — иерархии ролей
// нет, чтобы расширение одной операции не протекало в другие.
type PolicyService struct{}

func NewPolicyService() *PolicyService {
	return &PolicyService{}
}

// ReadDecision решает, может ли пользователь читать хранимые файлы.
// Любой подтверждённый пользователь системы может читать любой файл:
// надзор менеджеров и администраторов требует широкого чтения, а
// клиентам ссылки на чужие файлы просто не выдаются слоем UI.
// Ограничение по владельцу на чтение здесь сознательно не применяется.
func (p *PolicyService) ReadDecision(actor *domain.User) domain.Decision {
	if actor == nil {
		return domain.Deny(domain.ReasonAuthRequired)
	}
	if !actor.IsApproved() {
		return domain.Deny(domain.ReasonNotApproved)
	}
	return domain.Allow()
}

// UploadDecision решает, может ли actor загрузить файл для target.
// Клиент загружает только для себя; подтверждённый менеджер — для
// любого клиента. Загрузка файлов "для менеджера" запрещена.
func (p *PolicyService) UploadDecision(actor, target *domain.User) domain.Decision {
	if actor == nil {
		return domain.Deny(domain.ReasonAuthRequired)
	}
	if !actor.IsApproved() {
		return domain.Deny(domain.ReasonNotApproved)
	}
	if target == nil {
		return domain.Deny(domain.ReasonNotFound)
	}

	switch actor.Role {
	case domain.RoleCustomer:
		if actor.ID == target.ID {
			return domain.Allow()
		}
		return domain.Deny(domain.ReasonForbidden)

	case domain.RoleManager:
		if target.Role == domain.RoleCustomer {
			return domain.Allow()
		}
		return domain.Deny(domain.ReasonForbidden)

	default:
		return domain.Deny(domain.ReasonForbidden)
	}
}

// DeleteDecision решает, может ли actor удалить файл.
// Разрешено администратору, клиенту-владельцу и любому подтверждённому
// менеджеру. Для отсутствующего файла возвращается отказ not_found, а не
// ошибка: наружу он схлопывается в тот же сигнал, что и отказ по политике,
// чтобы не раскрывать существование файлов.
func (p *PolicyService) DeleteDecision(actor *domain.User, upload *domain.Upload) domain.Decision {
	if actor == nil {
		return domain.Deny(domain.ReasonAuthRequired)
	}
	if !actor.IsApproved() {
		return domain.Deny(domain.ReasonNotApproved)
	}
	if upload == nil {
		return domain.Deny(domain.ReasonNotFound)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return domain.Allow()
	case domain.RoleCustomer:
		if actor.ID == upload.OwnerID {
			return domain.Allow()
		}
		return domain.Deny(domain.ReasonForbidden)
	case domain.RoleManager:
		return domain.Allow()
	default:
		return domain.Deny(domain.ReasonForbidden)
	}
}

// TitleUpdateDecision решает, может ли actor переименовать файл.
// Правила совпадают с удалением, но перечислены отдельно:
// у каждой операции собственный явный список ролей.
func (p *PolicyService) TitleUpdateDecision(actor *domain.User, upload *domain.Upload) domain.Decision {
	if actor == nil {
		return domain.Deny(domain.ReasonAuthRequired)
	}
	if !actor.IsApproved() {
		return domain.Deny(domain.ReasonNotApproved)
	}
	if upload == nil {
		return domain.Deny(domain.ReasonNotFound)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return domain.Allow()
	case domain.RoleCustomer:
		if actor.ID == upload.OwnerID {
			return domain.Allow()
		}
		return domain.Deny(domain.ReasonForbidden)
	case domain.RoleManager:
		return domain.Allow()
	default:
		return domain.Deny(domain.ReasonForbidden)
	}
}
