// internal/services/fallback.go
package services

import "github.com/Corphon/RoleScope/internal/models"

// 存储不可用时各视图的静态替代数据
// 字段形状与实时计算结果完全一致，每次返回新的副本

// FallbackSummary 统计概览的静态替代
func FallbackSummary() *models.Summary {
	return &models.Summary{
		TotalRoles:     5,
		TotalBehaviors: 128,
		TotalMemories:  256,
		TodayBehaviors: 12,
	}
}

// FallbackBehaviorStats 行为统计的静态替代
func FallbackBehaviorStats() *models.BehaviorStats {
	return &models.BehaviorStats{
		TypeDistribution: []models.TypeCount{
			{Type: models.ActTypeSelf, Count: 78},
			{Type: models.ActTypeDialog, Count: 50},
		},
		RoleBehaviorRanking: []models.RoleRankEntry{
			{RoleName: "云溪", BehaviorCount: 45},
			{RoleName: "小明", BehaviorCount: 38},
			{RoleName: "小红", BehaviorCount: 25},
			{RoleName: "张三", BehaviorCount: 20},
		},
		InteractionRanking: []models.InteractionEntry{
			{Role1: "云溪", Role2: "小明", InteractionCount: 28},
			{Role1: "小明", Role2: "小红", InteractionCount: 15},
			{Role1: "云溪", Role2: "张三", InteractionCount: 12},
		},
		WeeklyTrend: []models.TrendPoint{
			{Date: "02-19", Count: 15},
			{Date: "02-20", Count: 22},
			{Date: "02-21", Count: 18},
			{Date: "02-22", Count: 25},
			{Date: "02-23", Count: 20},
			{Date: "02-24", Count: 28},
			{Date: "02-25", Count: 12},
		},
	}
}

// FallbackRoleStats 阵营分布的静态替代
func FallbackRoleStats() *models.RoleStats {
	return &models.RoleStats{
		CampDistribution: []models.CampCount{
			{Camp: "现代都市", Count: 3},
			{Camp: "古代江湖", Count: 2},
		},
	}
}

// FallbackHotTags 热门标签的静态替代
func FallbackHotTags() []models.HotTag {
	return []models.HotTag{
		{TagName: "对话", UseCount: 42},
		{TagName: "思考", UseCount: 35},
		{TagName: "创作", UseCount: 28},
		{TagName: "学习", UseCount: 18},
		{TagName: "休息", UseCount: 15},
	}
}
