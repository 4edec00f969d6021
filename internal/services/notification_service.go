package services

import "go.uber.org/zap"

// NotificationServiceInterface - интерфейс сервиса уведомлений по рабочему процессу.
type NotificationServiceInterface interface {
	SendWorkflowEmail(to, subject, body string) error
}

// mockNotificationService - реализация-заглушка (mock), которая пишет в лог
// вместо реальной отправки сообщений.
type mockNotificationService struct {
	logger *zap.Logger
}

func NewMockNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &mockNotificationService{logger: logger}
}

// SendWorkflowEmail имитирует отправку email.
func (s *mockNotificationService) SendWorkflowEmail(to, subject, body string) error {
	// В реальном приложении здесь будет интеграция с SendGrid, Mailgun и т.д.
	s.logger.Info("!!! ИМИТАЦИЯ ОТПРАВКИ EMAIL !!!",
		zap.String("кому", to),
		zap.String("тема", subject),
		zap.String("текст", body),
	)
	return nil
}
