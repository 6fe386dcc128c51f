// Package sender реализует отправку писем об обновлении курса.
//
// Сервис принимает тела заданий из очереди рассылки, собирает письмо
// и отправляет его через SMTP-транспорт.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	smtplib "github.com/ovsyanik/course-marketplace/internal/lib/smtp"
	"github.com/ovsyanik/course-marketplace/internal/services/notify"
)

// Service — отправщик писем об обновлении курса.
type Service struct {
	transport smtplib.TransportInterface
	log       *slog.Logger
}

// New создает новый отправщик писем.
func New(transport smtplib.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendCourseUpdate разбирает тело задания рассылки и отправляет
// подписчику письмо об обновлении материалов курса.
func (s *Service) SendCourseUpdate(body []byte) error {
	const op = "sender.SendCourseUpdate"

	var job notify.UpdateJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal update job", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := fmt.Sprintf("Обновление материалов курса «%s»", job.CourseTitle)
	bodyText := fmt.Sprintf("Здравствуйте!\n\nМатериалы курса «%s», на который вы подписаны, были обновлены.\n\nЗагляните в личный кабинет, чтобы посмотреть изменения.",
		job.CourseTitle)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
