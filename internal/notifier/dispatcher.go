package notifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"talent-radar/internal/logger"
	"talent-radar/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config 发送与重试配置。
type Config struct {
	Workers        int    `yaml:"workers" json:"workers"`
	MaxAttempts    int    `yaml:"max_attempts" json:"max_attempts"`
	RetryBatchSize int    `yaml:"retry_batch_size" json:"retry_batch_size"`
	RetryInterval  string `yaml:"retry_interval" json:"retry_interval"`
	// ClaimTimeout 超过该时长仍停在 PENDING/SENDING 的记录视为发送中断，可被重试任务接管。默认 10m。
	ClaimTimeout string `yaml:"claim_timeout" json:"claim_timeout"`
}

const defaultClaimTimeout = 10 * time.Minute

// Outbox 发件箱持久化接口。
type Outbox interface {
	EnqueueNotification(ctx context.Context, n *model.Notification) (bool, error)
	MarkNotificationSent(ctx context.Context, id uint, at time.Time) error
	MarkNotificationFailed(ctx context.Context, id uint, reason string) error
	ListRetryableNotifications(ctx context.Context, maxAttempts int, staleBefore time.Time, limit int) ([]model.Notification, error)
	ClaimNotification(ctx context.Context, id uint, maxAttempts int, staleBefore time.Time) (bool, error)
}

// Message 待发送的一条通知。DedupKey 相同的消息只会入队一次，为空时不去重。
type Message struct {
	RecipientID *uint
	To          string
	Kind        model.NotificationKind
	Subject     string
	Body        string
	RelatedID   uint
	EventID     string
	DedupKey    string
}

// Report 统计一次发送的结果。
type Report struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Dispatcher 先写发件箱再发送，失败只记录日志与状态，不向调用方返回错误。
type Dispatcher struct {
	outbox Outbox
	sender EmailSender
	from   string
	cfg    Config
	claim  time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewDispatcher 创建 Dispatcher。
func NewDispatcher(outbox Outbox, sender EmailSender, from string, cfg Config, l *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryBatchSize <= 0 {
		cfg.RetryBatchSize = 50
	}
	claim := defaultClaimTimeout
	if d, err := time.ParseDuration(cfg.ClaimTimeout); err == nil && d > 0 {
		claim = d
	}
	return &Dispatcher{
		outbox: outbox,
		sender: sender,
		from:   from,
		cfg:    cfg,
		claim:  claim,
		log:    logger.Named(l, "dispatcher"),
		now:    time.Now,
	}
}

// Dispatch 入队并尽力发送。
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) Report {
	var (
		rep     Report
		pending []*model.Notification
	)
	for _, msg := range msgs {
		to := strings.TrimSpace(msg.To)
		if to == "" {
			d.log.Warn("skip notification without recipient", zap.String("kind", string(msg.Kind)), zap.Uint("related_id", msg.RelatedID))
			rep.Skipped++
			continue
		}
		key := msg.DedupKey
		if key == "" {
			key = uuid.NewString()
		}
		n := &model.Notification{
			RecipientID:    msg.RecipientID,
			RecipientEmail: to,
			Kind:           msg.Kind,
			Subject:        msg.Subject,
			Body:           msg.Body,
			RelatedID:      msg.RelatedID,
			EventID:        msg.EventID,
			DedupKey:       key,
			Status:         model.NotificationPending,
		}

		created, err := d.outbox.EnqueueNotification(ctx, n)
		if err != nil {
			// 发件箱不可用时仍尝试直接发送，只是没有重试记录。
			d.log.Error("enqueue notification", zap.String("dedup_key", key), zap.Error(err))
			n.ID = 0
			pending = append(pending, n)
			continue
		}
		if !created {
			d.log.Debug("duplicate notification skipped", zap.String("dedup_key", key))
			rep.Skipped++
			continue
		}
		pending = append(pending, n)
	}

	sent := d.deliverAll(ctx, pending)
	sent.Skipped += rep.Skipped
	return sent
}

// RetryPending 重发未成功的通知，列表读取失败时返回错误由调度器记录。
// 每条记录先认领再发送，正在由 Dispatch 或其他重试发送的记录会被跳过。
func (d *Dispatcher) RetryPending(ctx context.Context) (Report, error) {
	staleBefore := d.now().Add(-d.claim)
	rows, err := d.outbox.ListRetryableNotifications(ctx, d.cfg.MaxAttempts, staleBefore, d.cfg.RetryBatchSize)
	if err != nil {
		return Report{}, err
	}
	var skipped int
	pending := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		ok, err := d.outbox.ClaimNotification(ctx, rows[i].ID, d.cfg.MaxAttempts, staleBefore)
		if err != nil {
			d.log.Error("claim notification", zap.Uint("notification_id", rows[i].ID), zap.Error(err))
			skipped++
			continue
		}
		if !ok {
			skipped++
			continue
		}
		pending = append(pending, &rows[i])
	}
	rep := d.deliverAll(ctx, pending)
	rep.Skipped += skipped
	if len(rows) > 0 {
		d.log.Info("notification retry pass", zap.Int("sent", rep.Sent), zap.Int("failed", rep.Failed), zap.Int("skipped", rep.Skipped))
	}
	return rep, nil
}

func (d *Dispatcher) deliverAll(ctx context.Context, pending []*model.Notification) Report {
	var (
		mu  sync.Mutex
		rep Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for _, n := range pending {
		n := n
		g.Go(func() error {
			ok := d.deliver(gctx, n)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				rep.Sent++
			} else {
				rep.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

func (d *Dispatcher) deliver(ctx context.Context, n *model.Notification) bool {
	err := d.sender.Send(ctx, EmailMessage{
		From:    d.from,
		To:      []string{n.RecipientEmail},
		Subject: n.Subject,
		Body:    n.Body,
	})
	if err != nil {
		d.log.Warn("send notification failed",
			zap.Uint("notification_id", n.ID),
			zap.String("kind", string(n.Kind)),
			zap.String("to", n.RecipientEmail),
			zap.Error(err),
		)
		if n.ID != 0 {
			if markErr := d.outbox.MarkNotificationFailed(ctx, n.ID, err.Error()); markErr != nil {
				d.log.Error("mark notification failed", zap.Uint("notification_id", n.ID), zap.Error(markErr))
			}
		}
		return false
	}

	if n.ID != 0 {
		if markErr := d.outbox.MarkNotificationSent(ctx, n.ID, d.now()); markErr != nil {
			d.log.Error("mark notification sent", zap.Uint("notification_id", n.ID), zap.Error(markErr))
		}
	}
	return true
}
