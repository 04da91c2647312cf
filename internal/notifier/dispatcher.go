package notifier

import (
	"context"
	"fmt"

	"talento/internal/model"

	"github.com/rs/zerolog"
)

// Writer 持久化站内通知，通常是事务内的 Store。
type Writer interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Channel 站内通知之外的投递渠道（邮件、日志）。
type Channel interface {
	Name() string
	Deliver(ctx context.Context, to Recipient, n model.Notification) error
}

// Recipient 通知接收者。
type Recipient struct {
	UserID string
	Email  string
	Name   string
}

// RecipientOf 由账号构造接收者。
func RecipientOf(u *model.User) Recipient {
	if u == nil {
		return Recipient{}
	}
	return Recipient{UserID: u.ID, Email: u.Email, Name: u.Name}
}

// Pending 已写入数据库、等待事务提交后镜像到外部渠道的通知。
type Pending struct {
	To           Recipient
	Notification model.Notification
}

// Dispatcher 写入站内通知，并在提交后按渠道镜像，窗口内重复的通知只镜像一次。
type Dispatcher struct {
	channels []Channel
	dedup    *Dedup
	logger   zerolog.Logger
}

// NewDispatcher 创建 Dispatcher，dedup 为空时不去重。
func NewDispatcher(logger zerolog.Logger, dedup *Dedup, channels ...Channel) *Dispatcher {
	active := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			active = append(active, ch)
		}
	}
	return &Dispatcher{channels: active, dedup: dedup, logger: logger}
}

// Record 通过 w 写入一条站内通知，返回待镜像的记录。
func (d *Dispatcher) Record(ctx context.Context, w Writer, to Recipient, n model.Notification) (Pending, error) {
	if to.UserID == "" {
		return Pending{}, fmt.Errorf("notification recipient missing")
	}
	n.ID = ""
	n.UserID = to.UserID
	n.Read = false
	if err := w.CreateNotification(ctx, &n); err != nil {
		return Pending{}, fmt.Errorf("create notification: %w", err)
	}
	return Pending{To: to, Notification: n}, nil
}

// Flush 将已提交的通知镜像到各渠道。渠道错误只记录日志。
func (d *Dispatcher) Flush(ctx context.Context, pending ...Pending) {
	if d == nil || len(d.channels) == 0 {
		return
	}
	for _, p := range pending {
		if d.dedup != nil && d.dedup.Seen(DedupKey(p.To.UserID, p.Notification)) {
			d.logger.Debug().Str("user_id", p.To.UserID).Str("title", p.Notification.Title).Msg("duplicate notification suppressed")
			continue
		}
		for _, ch := range d.channels {
			if err := ch.Deliver(ctx, p.To, p.Notification); err != nil {
				d.logger.Warn().Err(err).Str("channel", ch.Name()).Str("user_id", p.To.UserID).Msg("deliver notification")
			}
		}
	}
}

// Send 在事务外写入并立即镜像。
func (d *Dispatcher) Send(ctx context.Context, w Writer, to Recipient, n model.Notification) error {
	p, err := d.Record(ctx, w, to, n)
	if err != nil {
		return err
	}
	d.Flush(ctx, p)
	return nil
}

// DedupKey 以接收者与通知内容生成去重键。
func DedupKey(userID string, n model.Notification) string {
	return userID + "|" + string(n.Type) + "|" + n.Title + "|" + n.Message + "|" + n.Link
}
