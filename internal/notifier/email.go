package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig 邮件配置。
type EmailConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

// Enabled 判断 SMTP 是否配置完整。
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.Port != 0 && c.From != ""
}

// EmailMessage 表示一封邮件。
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// EmailSender 抽象发送接口，便于测试替换。
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPClient 基于 gomail 发送纯文本邮件。
type SMTPClient struct {
	dialer dialer
}

func NewSMTPClient(cfg EmailConfig) *SMTPClient {
	return &SMTPClient{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (c *SMTPClient) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("send email: no recipients")
	}
	if err := c.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMessage(msg EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
