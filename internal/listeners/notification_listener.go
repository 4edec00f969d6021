package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"project-management/internal/events"
	"project-management/internal/repositories"
	"project-management/internal/services"
	"project-management/pkg/eventbus"
)

// NotificationListener слушает события рабочего процесса и рассылает уведомления
// участникам проекта.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	userRepo            repositories.UserRepositoryInterface
	departmentRepo      repositories.DepartmentRepositoryInterface
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		userRepo:            userRepo,
		departmentRepo:      departmentRepo,
		logger:              logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.ProjectTransitionedEventName, l.handleProjectTransitioned)
	bus.Subscribe(events.WorkStatusChangedEventName, l.handleWorkStatusChanged)
	bus.Subscribe(events.CorrectionCreatedEventName, l.handleCorrectionCreated)
	bus.Subscribe(events.CorrectionResolvedEventName, l.handleCorrectionResolved)
	l.logger.Info("NotificationListener подписан на события рабочего процесса")
}

func (l *NotificationListener) handleProjectTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ProjectTransitionedEvent)
	if !ok {
		return nil
	}

	department, err := l.departmentRepo.FindDepartment(ctx, e.ToDepartmentID)
	if err != nil {
		return fmt.Errorf("не удалось найти департамент для уведомления: %w", err)
	}

	mover, err := l.userRepo.FindUser(ctx, e.MovedBy)
	if err != nil {
		return fmt.Errorf("не удалось найти пользователя для уведомления: %w", err)
	}

	subject := fmt.Sprintf("Проект №%d передан в департамент %s", e.ProjectID, department.Name)
	body := fmt.Sprintf("%s передал(а) проект №%d в департамент %s.", mover.Fio, e.ProjectID, department.Name)
	if e.IsOverride {
		body += " Переход выполнен вне стандартного маршрута."
	}

	return l.notificationService.SendWorkflowEmail(mover.Email, subject, body)
}

func (l *NotificationListener) handleWorkStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.WorkStatusChangedEvent)
	if !ok {
		return nil
	}

	actor, err := l.userRepo.FindUser(ctx, e.ChangedBy)
	if err != nil {
		return fmt.Errorf("не удалось найти пользователя для уведомления: %w", err)
	}

	subject := fmt.Sprintf("Проект №%d: статус работ изменён", e.ProjectID)
	body := fmt.Sprintf("%s изменил(а) статус работ по проекту №%d: %s -> %s.", actor.Fio, e.ProjectID, e.FromStatus, e.ToStatus)

	return l.notificationService.SendWorkflowEmail(actor.Email, subject, body)
}

func (l *NotificationListener) handleCorrectionCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.CorrectionCreatedEvent)
	if !ok {
		return nil
	}

	// Уведомляем назначенного исполнителя; если его нет - автора запроса.
	recipientID := e.RequestedBy
	if e.AssignedTo != nil {
		recipientID = *e.AssignedTo
	}

	recipient, err := l.userRepo.FindUser(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("не удалось найти получателя уведомления: %w", err)
	}

	subject := fmt.Sprintf("Проект №%d: создан запрос на корректировку", e.ProjectID)
	body := fmt.Sprintf("По проекту №%d создан запрос на корректировку №%d с приоритетом %s.", e.ProjectID, e.CorrectionID, e.Priority)
	if e.AssignedTo != nil && *e.AssignedTo == recipientID {
		body += " Запрос назначен на вас."
	}

	return l.notificationService.SendWorkflowEmail(recipient.Email, subject, body)
}

func (l *NotificationListener) handleCorrectionResolved(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.CorrectionResolvedEvent)
	if !ok {
		return nil
	}

	resolver, err := l.userRepo.FindUser(ctx, e.ResolvedBy)
	if err != nil {
		return fmt.Errorf("не удалось найти пользователя для уведомления: %w", err)
	}

	subject := fmt.Sprintf("Проект №%d: корректировка №%d закрыта", e.ProjectID, e.CorrectionID)
	body := fmt.Sprintf("%s закрыл(а) корректировку №%d со статусом %s.", resolver.Fio, e.CorrectionID, e.Status)

	return l.notificationService.SendWorkflowEmail(resolver.Email, subject, body)
}
