// internal/models/stats.go
package models

// 派生统计视图：无独立身份，每次请求重新计算，本服务不持久化

// TypeCount 行为类型分布中的一项
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// RoleRankEntry 角色行为排名中的一项
type RoleRankEntry struct {
	RoleName      string `json:"role_name"`
	BehaviorCount int    `json:"behavior_count"`
}

// InteractionEntry 角色互动排名中的一项
// Role1/Role2 为规范化后的无序对，按字典序排列
type InteractionEntry struct {
	Role1            string `json:"role1"`
	Role2            string `json:"role2"`
	InteractionCount int    `json:"interaction_count"`
}

// TrendPoint 近7天趋势中的一天
type TrendPoint struct {
	Date  string `json:"date"` // MM-DD
	Count int    `json:"count"`
}

// BehaviorStats 行为统计聚合视图
type BehaviorStats struct {
	TypeDistribution    []TypeCount        `json:"type_distribution"`
	RoleBehaviorRanking []RoleRankEntry    `json:"role_behavior_ranking"`
	InteractionRanking  []InteractionEntry `json:"interaction_ranking"`
	WeeklyTrend         []TrendPoint       `json:"weekly_trend"`
}

// Summary 全局统计概览
type Summary struct {
	TotalRoles     int `json:"total_roles"`
	TotalBehaviors int `json:"total_behaviors"`
	TotalMemories  int `json:"total_memories"`
	TodayBehaviors int `json:"today_behaviors"`
}

// CampCount 阵营分布中的一项
type CampCount struct {
	Camp  string `json:"camp"`
	Count int    `json:"count"`
}

// RoleStats 角色统计视图
type RoleStats struct {
	CampDistribution []CampCount `json:"camp_distribution"`
}

// HotTag 热门行为标签
type HotTag struct {
	TagName  string `json:"tag_name"`
	UseCount int    `json:"use_count"`
}
