package notifier

import (
	"context"
	"os"

	"talento/internal/model"

	"github.com/rs/zerolog"
)

// LogChannel 仅打印通知，适合开发阶段使用。
type LogChannel struct {
	logger zerolog.Logger
}

// NewLogChannel 创建日志渠道，未提供 logger 时默认输出到标准输出。
func NewLogChannel(logger *zerolog.Logger) *LogChannel {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()
		logger = &l
	}
	return &LogChannel{logger: *logger}
}

// Name 渠道名。
func (c *LogChannel) Name() string { return "log" }

// Deliver 记录一条通知。
func (c *LogChannel) Deliver(_ context.Context, to Recipient, n model.Notification) error {
	c.logger.Info().
		Str("user_id", to.UserID).
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Str("link", n.Link).
		Msg("notification")
	return nil
}
