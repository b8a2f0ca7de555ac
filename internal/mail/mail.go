package mail

import (
	"github.com/alexivanou/cityinfo-api/internal/config"
	"go.uber.org/zap"
)

const (
	defaultLocalFrom = "noreply@mycompany.com"
	defaultLocalTo   = "admin@mycompany.com"
)

// Mailer delivers notifications. Send never fails from the caller's point of view.
type Mailer interface {
	Send(subject, message string)
}

// LocalMailer logs mail using fixed development addresses.
type LocalMailer struct {
	logger *zap.Logger
	from   string
	to     string
}

// NewLocalMailer creates a mailer for local runs
func NewLocalMailer(logger *zap.Logger) *LocalMailer {
	return &LocalMailer{logger: logger, from: defaultLocalFrom, to: defaultLocalTo}
}

func (m *LocalMailer) Send(subject, message string) {
	m.logger.Info("Mail sent",
		zap.String("mailer", "local"),
		zap.String("from", m.from),
		zap.String("to", m.to),
		zap.String("subject", subject),
		zap.String("body", message),
	)
}

// CloudMailer logs mail using the configured addresses.
type CloudMailer struct {
	logger *zap.Logger
	from   string
	to     string
}

// NewCloudMailer creates a mailer addressed from configuration
func NewCloudMailer(cfg config.MailConfig, logger *zap.Logger) *CloudMailer {
	return &CloudMailer{logger: logger, from: cfg.From, to: cfg.To}
}

func (m *CloudMailer) Send(subject, message string) {
	m.logger.Info("Mail sent",
		zap.String("mailer", "cloud"),
		zap.String("from", m.from),
		zap.String("to", m.to),
		zap.String("subject", subject),
		zap.String("body", message),
	)
}

// New picks the mailer for the configured provider
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Provider == config.MailProviderCloud {
		return NewCloudMailer(cfg, logger)
	}
	return NewLocalMailer(logger)
}
