// internal/models/feed.go
package models

// 角色主页的组合视图：作品、评论、动态三个独立区块
// 每个区块整体产出，不向调用方暴露半填充的结构

// Post 作品条目（非对话行为）
type Post struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// CommentRole 评论指向的角色
type CommentRole struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Comment 评论条目（由记忆数据映射而来）
type Comment struct {
	ID        string      `json:"id"`
	ToRole    CommentRole `json:"to_role"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"created_at"`
}

// TimelineEvent 动态时间线上的一条事件
type TimelineEvent struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// RoleQuota 角色的Token额度信息
type RoleQuota struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// RoleFeed 单个角色的完整活动视图
type RoleFeed struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Model         string          `json:"model"`
	Quota         RoleQuota       `json:"quota"`
	TodayActs     int             `json:"today_acts"`
	ActivityLevel string          `json:"activity_level"` // high / medium / low
	Tags          []string        `json:"tags"`
	Avatar        string          `json:"avatar"`
	Posts         []Post          `json:"posts"`
	Comments      []Comment       `json:"comments"`
	Timeline      []TimelineEvent `json:"timeline"`
}
