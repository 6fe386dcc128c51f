package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/ovsyanik/course-marketplace/internal/config"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
)

// Transport устанавливает STARTTLS-соединения с SMTP-сервером рассылки.
// Ему достаточно SMTP-блока конфигурации, остальной конфиг не нужен.
type Transport struct {
	cfg config.SMTPConnection
	log *slog.Logger
}

// session обертка для *smtp.Client, реализующая интерфейс Client.
type session struct {
	client *smtp.Client
}

func (s *session) Mail(from string) error {
	return s.client.Mail(from)
}

func (s *session) Rcpt(to string) error {
	return s.client.Rcpt(to)
}

func (s *session) Data() (io.WriteCloser, error) {
	return s.client.Data()
}

func (s *session) Quit() error {
	return s.client.Quit()
}

func (s *session) Close() error {
	return s.client.Close()
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTPConnection, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect устанавливает соединение с SMTP сервером: TCP, затем
// обязательный STARTTLS, затем PLAIN-аутентификация. Сервер без
// STARTTLS отклоняется.
func (t *Transport) Connect() (Client, error) {
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err), slog.String("addr", addr))
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		t.closeQuietly(conn)
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("SMTP server does not support STARTTLS", slog.String("addr", addr))
		t.closeQuietly(client)
		return nil, fmt.Errorf("smtp server does not support STARTTLS")
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.log.Error("failed to start TLS", sl.Err(err))
		t.closeQuietly(client)
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		t.closeQuietly(client)
		return nil, fmt.Errorf("smtp auth failed: %w", err)
	}

	return &session{client: client}, nil
}

// GetSMTPUser возвращает адрес отправителя рассылки.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}

func (t *Transport) closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close SMTP connection", sl.Err(err))
	}
}
