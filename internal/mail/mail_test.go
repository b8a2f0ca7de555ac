package mail

import (
	"testing"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger := zap.NewNop()

	assert.IsType(t, &LocalMailer{}, New(config.MailConfig{Provider: config.MailProviderLocal}, logger))
	assert.IsType(t, &CloudMailer{}, New(config.MailConfig{Provider: config.MailProviderCloud}, logger))
	assert.IsType(t, &LocalMailer{}, New(config.MailConfig{}, logger))
}

func TestSend(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.MailConfig
		expectedFrom string
		expectedTo   string
	}{
		{
			name:         "local uses fixed addresses",
			cfg:          config.MailConfig{Provider: config.MailProviderLocal, From: "ignored@example.com", To: "ignored@example.com"},
			expectedFrom: defaultLocalFrom,
			expectedTo:   defaultLocalTo,
		},
		{
			name:         "cloud uses configured addresses",
			cfg:          config.MailConfig{Provider: config.MailProviderCloud, From: "api@example.com", To: "ops@example.com"},
			expectedFrom: "api@example.com",
			expectedTo:   "ops@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			mailer := New(tt.cfg, zap.New(core))

			mailer.Send("POI Deleted", "Deleted POI with id 3, from City with id 1")

			entries := logs.All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.expectedFrom, fields["from"])
			assert.Equal(t, tt.expectedTo, fields["to"])
			assert.Equal(t, "POI Deleted", fields["subject"])
			assert.Equal(t, "Deleted POI with id 3, from City with id 1", fields["body"])
		})
	}
}
