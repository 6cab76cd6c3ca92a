// Package housekeeping 定时归档长时间无活动的 resolved 房间
// 房间只会被置为 closed，不会被删除
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"shop_chat_server/internal/dao/mysql/repository"
	"shop_chat_server/internal/infrastructure/mq"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser 标准 5 段 cron 表达式（分 时 日 月 周）
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ArchivedPayload chat.rooms.archived 事件内容
type ArchivedPayload struct {
	Count  int64     `json:"count"`
	Before time.Time `json:"before"`
}

// Archiver 归档任务
type Archiver struct {
	rooms     repository.ChatRoomRepository
	publisher mq.EventPublisher
	idle      time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewArchiver afterDays 天内无活动的 resolved 房间会被归档
func NewArchiver(rooms repository.ChatRoomRepository, publisher mq.EventPublisher, afterDays int) *Archiver {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	if afterDays <= 0 {
		afterDays = 14
	}
	return &Archiver{
		rooms:     rooms,
		publisher: publisher,
		idle:      time.Duration(afterDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// RunOnce 执行一次归档，返回归档数量
func (a *Archiver) RunOnce(ctx context.Context) (int64, error) {
	before := a.now().Add(-a.idle)
	n, err := a.rooms.ArchiveIdle(before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Info("idle rooms archived", zap.Int64("count", n), zap.Time("before", before))
		event := mq.NewEvent(mq.EventRoomsArchived, "", ArchivedPayload{Count: n, Before: before})
		if err := a.publisher.Publish(ctx, event); err != nil {
			zap.L().Warn("publish archive event failed", zap.Error(err))
		}
	}
	return n, nil
}

// Start 按 schedule 周期执行归档
func (a *Archiver) Start(schedule string) error {
	if a.cron != nil {
		return fmt.Errorf("archiver already started")
	}
	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := a.RunOnce(context.Background()); err != nil {
			zap.L().Error("archive idle rooms failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid archive schedule %q: %w", schedule, err)
	}
	c.Start()
	a.cron = c
	zap.L().Info("room archiver started", zap.String("schedule", schedule), zap.Duration("idle", a.idle))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (a *Archiver) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.cron = nil
}
