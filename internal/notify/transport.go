package notify

import (
	"log/slog"

	"portfolio/internal/platform/config"
)

// NewTransport picks SMTP when the relay is fully configured and the sandbox
// otherwise, so the service keeps working without mail credentials. An empty
// previewBaseURL turns off preview links.
func NewTransport(cfg config.Mail, previewBaseURL string, logger *slog.Logger) (Transport, error) {
	if !cfg.Configured() {
		logger.Warn("mail credentials not configured, using sandbox transport",
			"previews", previewBaseURL != "",
		)
		return NewSandboxTransport(previewBaseURL, cfg.SandboxCapacity), nil
	}
	return NewSMTPTransport(SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
	})
}
