// internal/api/handlers.go
package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/RoleScope/internal/services"
)

// defaultActLimit 行为列表默认返回条数
const defaultActLimit = 50

// Handler API处理器
type Handler struct {
	BehaviorService *services.BehaviorService
	StatsService    *services.StatsService
	FeedService     *services.FeedService
	UsageService    *services.UsageService
	FeedHub         *FeedHub

	Response *ResponseHelper
}

// NewHandler 创建API处理器
func NewHandler(
	behavior *services.BehaviorService,
	stats *services.StatsService,
	feed *services.FeedService,
	usage *services.UsageService,
	hub *FeedHub,
) *Handler {
	return &Handler{
		BehaviorService: behavior,
		StatsService:    stats,
		FeedService:     feed,
		UsageService:    usage,
		FeedHub:         hub,
		Response:        NewResponseHelper(),
	}
}

// parseIDParam 解析路径中的数字ID
func (h *Handler) parseIDParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Response.BadRequest(c, "无效的ID参数: "+raw)
		return 0, false
	}
	return id, true
}

// GetSummary 获取总量概览
// 存储不可用时服务层已降级为静态数据，这里永远返回 200
func (h *Handler) GetSummary(c *gin.Context) {
	summary := h.StatsService.GetSummary(c.Request.Context())
	h.Response.Success(c, summary)
}

// GetBehaviorStats 获取行为统计视图
func (h *Handler) GetBehaviorStats(c *gin.Context) {
	stats := h.StatsService.GetBehaviorStats(c.Request.Context())
	h.Response.Success(c, stats)
}

// GetRoleStats 获取角色阵营分布
func (h *Handler) GetRoleStats(c *gin.Context) {
	stats := h.StatsService.GetRoleStats(c.Request.Context())
	h.Response.Success(c, stats)
}

// GetHotTags 获取热门行为标签
func (h *Handler) GetHotTags(c *gin.Context) {
	tags := h.StatsService.GetHotTags(c.Request.Context())
	h.Response.Success(c, tags)
}

// ListBehaviors 获取规范化后的行为列表
func (h *Handler) ListBehaviors(c *gin.Context) {
	limit := defaultActLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.Response.BadRequest(c, "无效的limit参数: "+raw)
			return
		}
		limit = parsed
	}

	acts, err := h.BehaviorService.ListBehaviors(c.Request.Context(), limit)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	h.Response.Success(c, acts)
}

// GetBehaviorDetail 获取单条行为的详情
func (h *Handler) GetBehaviorDetail(c *gin.Context) {
	actID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.BehaviorService.GetBehaviorDetail(c.Request.Context(), actID)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	h.Response.Success(c, detail)
}

// ListRoles 获取角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.BehaviorService.ListRoles(c.Request.Context())
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	h.Response.Success(c, roles)
}

// GetRole 获取单个角色
func (h *Handler) GetRole(c *gin.Context) {
	roleID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.BehaviorService.GetRole(c.Request.Context(), roleID)
	if err != nil {
		h.Response.FromAppError(c, err)
		return
	}

	h.Response.Success(c, role)
}

// GetRoleFeed 获取角色的组合活动视图
// 组合层自带完整降级，永远返回可渲染的内容
func (h *Handler) GetRoleFeed(c *gin.Context) {
	roleID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	feed := h.FeedService.GetRoleFeed(c.Request.Context(), roleID)
	h.Response.Success(c, feed)
}

// GetUsage 获取接口访问统计
func (h *Handler) GetUsage(c *gin.Context) {
	h.Response.Success(c, h.UsageService.GetUsage())
}

// HandleFeedWS WebSocket升级入口
func (h *Handler) HandleFeedWS(c *gin.Context) {
	h.FeedHub.HandleFeedWS(c)
}
