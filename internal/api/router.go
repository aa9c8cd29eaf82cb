// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/RoleScope/internal/config"
	"github.com/Corphon/RoleScope/internal/di"
	"github.com/Corphon/RoleScope/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不再创建新实例
	behaviorService, ok := container.Get("behavior").(*services.BehaviorService)
	if !ok {
		return nil, fmt.Errorf("行为服务未正确初始化")
	}

	statsService, ok := container.Get("stats").(*services.StatsService)
	if !ok {
		return nil, fmt.Errorf("统计服务未正确初始化")
	}

	feedService, ok := container.Get("feed").(*services.FeedService)
	if !ok {
		return nil, fmt.Errorf("角色活动服务未正确初始化")
	}

	usageService, ok := container.Get("usage").(*services.UsageService)
	if !ok {
		return nil, fmt.Errorf("访问统计服务未正确初始化")
	}

	feedHub, ok := container.Get("feed_hub").(*FeedHub)
	if !ok {
		return nil, fmt.Errorf("推送中心未正确初始化")
	}

	handler := NewHandler(
		behaviorService,
		statsService,
		feedService,
		usageService,
		feedHub,
	)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 启用CORS与请求追踪
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(usageMiddleware(usageService))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"clients": feedHub.ClientCount(),
		})
	})

	// API路由
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/stats", handler.GetSummary)
		apiGroup.GET("/stats/behaviors", handler.GetBehaviorStats)
		apiGroup.GET("/stats/roles", handler.GetRoleStats)
		apiGroup.GET("/tags/hot", handler.GetHotTags)

		apiGroup.GET("/behaviors", handler.ListBehaviors)
		apiGroup.GET("/behaviors/:id/details", handler.GetBehaviorDetail)

		apiGroup.GET("/roles", handler.ListRoles)
		apiGroup.GET("/roles/:id", handler.GetRole)
		apiGroup.GET("/roles/:id/feed", handler.GetRoleFeed)

		apiGroup.GET("/usage", handler.GetUsage)
	}

	// WebSocket路由
	r.GET("/ws/feed", handler.HandleFeedWS)

	return r, nil
}
