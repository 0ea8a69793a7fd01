package service

import (
	"context"
	"fmt"
	"log"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

// UserDirectory расширяет UserStore операциями управления пользователями
type UserDirectory interface {
	UserStore
	Create(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	ListByRoleAndStatus(ctx context.Context, role domain.Role, status domain.Status) ([]domain.User, error)
}

// UserService отвечает за регистрацию и подтверждение пользователей
type UserService struct {
	userRepo UserDirectory
	activity *ActivityService
}

func NewUserService(userRepo UserDirectory, activity *ActivityService) *UserService {
	return &UserService{
		userRepo: userRepo,
		activity: activity,
	}
}

// Register создает нового пользователя.
// Клиенты подтверждаются сразу; заявки менеджеров ждут решения
// администратора. Роль администратора через регистрацию не выдаётся.
func (s *UserService) Register(ctx context.Context, name, email string, role domain.Role) (*domain.User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	var status domain.Status
	switch role {
	case domain.RoleCustomer:
		status = domain.StatusApproved
	case domain.RoleManager:
		status = domain.StatusPending
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", ErrValidation, role)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}

	user := &domain.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Status: status,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	details := fmt.Sprintf("email=%s role=%s", email, role)
	if err := s.activity.Record(ctx, user.ID, domain.ActionRegister, details); err != nil {
		log.Printf("[Register] failed to record activity: %v", err)
	}

	return user, nil
}

// RequireAdmin проверяет, что действие выполняет подтверждённый администратор
func (s *UserService) RequireAdmin(actor *domain.User) error {
	return requireAdmin(actor)
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return ErrAuthRequired
	}
	if actor.Role != domain.RoleAdmin || !actor.IsApproved() {
		return ErrAccessDenied
	}
	return nil
}

// PendingManagers возвращает заявки менеджеров, ожидающие решения
func (s *UserService) PendingManagers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.userRepo.ListByRoleAndStatus(ctx, domain.RoleManager, domain.StatusPending)
}

// ApproveManager подтверждает заявку менеджера
func (s *UserService) ApproveManager(ctx context.Context, actor *domain.User, managerID int64) error {
	return s.resolveManager(ctx, actor, managerID, domain.StatusApproved, domain.ActionManagerApprove)
}

// RejectManager отклоняет заявку менеджера
func (s *UserService) RejectManager(ctx context.Context, actor *domain.User, managerID int64) error {
	return s.resolveManager(ctx, actor, managerID, domain.StatusRejected, domain.ActionManagerReject)
}

func (s *UserService) resolveManager(ctx context.Context, actor *domain.User, managerID int64, status domain.Status, action string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	manager, err := s.userRepo.GetByID(ctx, managerID)
	if err != nil {
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if manager == nil || manager.Role != domain.RoleManager {
		return ErrNotFound
	}

	if err := s.userRepo.UpdateStatus(ctx, managerID, status); err != nil {
		return fmt.Errorf("failed to update manager status: %w", err)
	}

	details := fmt.Sprintf("manager=%s", manager.Email)
	if err := s.activity.Record(ctx, actor.ID, action, details); err != nil {
		log.Printf("[Admin] failed to record activity: %v", err)
	}

	return nil
}
