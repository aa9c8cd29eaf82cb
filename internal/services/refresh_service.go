// internal/services/refresh_service.go
package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/utils"
)

// refreshSpec 统计快照的刷新周期
const refreshSpec = "@every 1m"

// Broadcaster 向已连接的客户端推送统计快照
type Broadcaster interface {
	BroadcastStats(summary *models.Summary, stats *models.BehaviorStats)
}

// RefreshService 周期性重算统计并推送给订阅方
// 计算失败只记日志并跳过本轮，不中断调度
type RefreshService struct {
	Stats       *StatsService
	Broadcaster Broadcaster

	cron *cron.Cron
}

// NewRefreshService 创建统计刷新服务
func NewRefreshService(stats *StatsService, broadcaster Broadcaster) *RefreshService {
	if stats == nil {
		panic("StatsService cannot be nil")
	}
	return &RefreshService{
		Stats:       stats,
		Broadcaster: broadcaster,
		cron:        cron.New(),
	}
}

// Start 启动周期刷新任务
func (s *RefreshService) Start() error {
	if _, err := s.cron.AddFunc(refreshSpec, s.refreshOnce); err != nil {
		return err
	}
	s.cron.Start()
	utils.GetLogger().Infof("统计刷新任务已启动，周期 %s", refreshSpec)
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *RefreshService) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		utils.GetLogger().Warnf("等待刷新任务结束超时")
	}
}

// refreshOnce 执行一轮统计重算并推送
func (s *RefreshService) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary := s.Stats.GetSummary(ctx)
	stats := s.Stats.GetBehaviorStats(ctx)

	if s.Broadcaster != nil {
		s.Broadcaster.BroadcastStats(summary, stats)
	}
}
