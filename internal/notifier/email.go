package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"talento/internal/model"
)

// EmailConfig 邮件配置，Host 为空时不启用邮件镜像。
type EmailConfig struct {
	Host       string `yaml:"host" json:"host"`
	Port       int    `yaml:"port" json:"port"`
	Username   string `yaml:"username" json:"username"`
	Password   string `yaml:"password" json:"password"`
	From       string `yaml:"from" json:"from"`
	Subject    string `yaml:"subject" json:"subject"`
	PublicBase string `yaml:"public_base" json:"public_base"`
}

// Enabled 判断配置是否足以发送邮件。
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

// SMTPClient 封装 SMTP 发送。
type SMTPClient struct {
	addr string
	auth smtp.Auth
}

func NewSMTPClient(cfg EmailConfig) *SMTPClient {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPClient{addr: addr, auth: auth}
}

func (c *SMTPClient) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := buildEmailData(msg)
	return smtp.SendMail(c.addr, c.auth, msg.From, msg.To, []byte(data))
}

// EmailChannel 将站内通知镜像到接收者邮箱。
type EmailChannel struct {
	cfg    EmailConfig
	sender EmailSender
}

// NewEmailChannel 创建 EmailChannel，sender 为空时使用 SMTP。
func NewEmailChannel(cfg EmailConfig, sender EmailSender) *EmailChannel {
	if sender == nil {
		sender = NewSMTPClient(cfg)
	}
	if cfg.Subject == "" {
		cfg.Subject = "Talento"
	}
	return &EmailChannel{cfg: cfg, sender: sender}
}

// Name 渠道名。
func (c *EmailChannel) Name() string { return "email" }

// Deliver 发送邮件，接收者无邮箱时跳过。
func (c *EmailChannel) Deliver(ctx context.Context, to Recipient, n model.Notification) error {
	if strings.TrimSpace(to.Email) == "" {
		return nil
	}
	msg := EmailMessage{
		From:    c.cfg.From,
		To:      []string{to.Email},
		Subject: fmt.Sprintf("%s: %s", c.cfg.Subject, n.Title),
		Body:    buildBody(c.cfg.PublicBase, to, n),
	}
	return c.sender.Send(ctx, msg)
}

func buildBody(base string, to Recipient, n model.Notification) string {
	var b strings.Builder
	if to.Name != "" {
		b.WriteString(to.Name + ",\n\n")
	}
	b.WriteString(n.Message)
	b.WriteString("\n")
	if n.Link != "" {
		b.WriteString("\n" + strings.TrimSuffix(base, "/") + n.Link + "\n")
	}
	return b.String()
}

func buildEmailData(msg EmailMessage) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ",")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
