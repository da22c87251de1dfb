package notification

import (
	"context"

	"shopbooking-backend/internal/config"
	"shopbooking-backend/internal/logger"
)

// BuildChannels creates the configured chain in order. A channel that lacks
// credentials or cannot connect is skipped with a warning so the rest of the
// chain still works. The returned func releases broker connections.
func BuildChannels(ctx context.Context, cfg config.NotificationConfig) ([]Channel, func()) {
	var (
		channels []Channel
		closers  []func() error
	)

	for _, name := range cfg.Channels {
		switch name {
		case ChannelSendGrid:
			if cfg.SendGrid.APIKey == "" {
				logger.Warn("Skipping notification channel without credentials", "channel", name)
				continue
			}
			channels = append(channels, NewSendGridChannel(cfg.SendGrid.APIKey, cfg.From, cfg.FromName))

		case ChannelSMTP:
			if cfg.SMTP.Host == "" {
				logger.Warn("Skipping notification channel without host", "channel", name)
				continue
			}
			channels = append(channels, NewSMTPChannel(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.From, cfg.FromName))

		case ChannelQueue:
			if cfg.AMQP.URL == "" {
				logger.Warn("Skipping notification channel without broker url", "channel", name)
				continue
			}
			q, err := NewQueueChannel(cfg.AMQP.URL, cfg.AMQP.Queue)
			if err != nil {
				logger.Warn("Skipping notification channel", "channel", name, "error", err)
				continue
			}
			channels = append(channels, q)
			closers = append(closers, q.Close)

		case ChannelSMS:
			if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
				logger.Warn("Skipping notification channel without credentials", "channel", name)
				continue
			}
			channels = append(channels, NewSMSChannel(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From))

		case ChannelPush:
			if cfg.Push.CredentialsFile == "" {
				logger.Warn("Skipping notification channel without credentials", "channel", name)
				continue
			}
			p, err := NewPushChannel(ctx, cfg.Push.CredentialsFile, cfg.Push.Topic)
			if err != nil {
				logger.Warn("Skipping notification channel", "channel", name, "error", err)
				continue
			}
			channels = append(channels, p)
		}
	}

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	logger.Info("Notification chain ready", "channels", names)

	return channels, func() {
		for _, c := range closers {
			_ = c()
		}
	}
}
