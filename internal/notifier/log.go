package notifier

import (
	"context"
	"strings"

	"talent-radar/internal/logger"

	"go.uber.org/zap"
)

// LogSender 只打印邮件内容，SMTP 未配置时使用。
type LogSender struct {
	log *zap.Logger
}

// NewLogSender 创建日志发送器。
func NewLogSender(l *zap.Logger) *LogSender {
	return &LogSender{log: logger.Named(l, "mail")}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.log.Info("email",
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return ctx.Err()
}
