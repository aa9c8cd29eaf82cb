// internal/app/app.go
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/Corphon/RoleScope/internal/api"
	"github.com/Corphon/RoleScope/internal/config"
	"github.com/Corphon/RoleScope/internal/di"
	"github.com/Corphon/RoleScope/internal/services"
	"github.com/Corphon/RoleScope/internal/store"
	"github.com/Corphon/RoleScope/internal/utils"
)

// App 应用实例，持有需要在关闭时释放的资源
type App struct {
	config   *config.AppConfig
	sqlite   *store.SQLiteStore
	stopChan chan struct{}
}

// 全局应用实例（单例模式）
var (
	instance *App
	appOnce  sync.Once
)

// GetApp 获取应用实例
func GetApp() *App {
	appOnce.Do(func() {
		instance = &App{
			stopChan: make(chan struct{}),
		}
	})
	return instance
}

// InitServices 按依赖顺序初始化所有服务并注册到容器
// 数据源在最底层，推送中心和刷新任务在最上层
func InitServices() error {
	app := GetApp()
	cfg := config.GetCurrentConfig()
	app.config = cfg

	container := di.GetContainer()

	// 1. 数据源：默认打开SQLite，显式要求时使用内置示例数据
	var provider store.DataProvider
	if cfg.UseMockData {
		utils.GetLogger().Infof("使用内置示例数据源")
		provider = store.NewStaticProvider(time.Now())
	} else {
		sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("打开行为数据库失败: %w", err)
		}
		app.sqlite = sqliteStore
		provider = sqliteStore
		utils.GetLogger().Infof("行为数据库已打开: %s", cfg.DBPath)
	}
	container.Register("provider", provider)

	// 2. 规范化与查询服务
	behaviorService := services.NewBehaviorService(provider)
	container.Register("behavior", behaviorService)

	// 3. 统计服务依赖规范化服务
	statsService := services.NewStatsService(behaviorService, provider)
	container.Register("stats", statsService)

	// 4. 角色活动组合服务
	feedService := services.NewFeedService(provider)
	container.Register("feed", feedService)

	// 5. 访问统计
	usageService := services.NewUsageService(cfg.UsageDir)
	container.Register("usage", usageService)

	// 6. 推送中心与周期刷新
	feedHub := api.NewFeedHub()
	container.Register("feed_hub", feedHub)

	refreshService := services.NewRefreshService(statsService, feedHub)
	if err := refreshService.Start(); err != nil {
		return fmt.Errorf("启动统计刷新任务失败: %w", err)
	}
	container.Register("refresh", refreshService)

	return nil
}

// Cleanup 释放所有服务持有的资源，顺序与初始化相反
func Cleanup() {
	container := di.GetContainer()

	if refresh, ok := container.Get("refresh").(*services.RefreshService); ok {
		refresh.Stop()
	}

	if hub, ok := container.Get("feed_hub").(*api.FeedHub); ok {
		hub.Shutdown()
	}

	if usage, ok := container.Get("usage").(*services.UsageService); ok {
		if err := usage.Close(); err != nil {
			utils.GetLogger().Warnf("保存访问统计失败: %v", err)
		}
	}

	app := GetApp()
	if app.sqlite != nil {
		if err := app.sqlite.Close(); err != nil {
			utils.GetLogger().Warnf("关闭行为数据库失败: %v", err)
		}
		app.sqlite = nil
	}

	close(app.stopChan)
}

// GetConfig 返回应用持有的配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// IsDebugMode 返回是否处于调试模式
func (a *App) IsDebugMode() bool {
	return a.config != nil && a.config.DebugMode
}
