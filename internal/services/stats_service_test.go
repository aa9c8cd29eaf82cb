// internal/services/stats_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
)

// TestBuildTypeDistribution 测试类型分布统计
func TestBuildTypeDistribution(t *testing.T) {
	acts := []models.Act{
		{ActID: 1, ActType: models.ActTypeSelf},
		{ActID: 2, ActType: models.ActTypeDialog},
		{ActID: 3, ActType: models.ActTypeSelf},
		{ActID: 4, ActType: ""},
	}

	dist := BuildTypeDistribution(acts)

	if len(dist) != 3 {
		t.Fatalf("应该产生3个类型分组，实际 %d", len(dist))
	}

	total := 0
	for _, tc := range dist {
		total += tc.Count
	}
	if total != len(acts) {
		t.Errorf("各类型计数之和应等于行为总数 %d，实际 %d", len(acts), total)
	}

	// 类型缺失的记录应归入 unknown 而不是被丢弃
	found := false
	for _, tc := range dist {
		if tc.Type == UnknownTypeName && tc.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Error("类型缺失的记录应归入 unknown 分组")
	}

	// 分组顺序应跟随类型在输入中首次出现的顺序
	if dist[0].Type != models.ActTypeSelf || dist[1].Type != models.ActTypeDialog {
		t.Errorf("分组顺序应按首次出现排列，实际 %v", dist)
	}
}

// TestBuildRoleRanking 测试角色行为排名
func TestBuildRoleRanking(t *testing.T) {
	acts := []models.Act{
		{RoleName: "云溪"},
		{RoleName: "小明"},
		{RoleName: "云溪"},
		{RoleName: "小红"},
		{RoleName: "云溪"},
		{RoleName: "小明"},
	}

	ranking := BuildRoleRanking(acts)

	if len(ranking) != 3 {
		t.Fatalf("应该产生3个排名条目，实际 %d", len(ranking))
	}

	if ranking[0].RoleName != "云溪" || ranking[0].BehaviorCount != 3 {
		t.Errorf("第一名应该是云溪(3)，实际 %s(%d)", ranking[0].RoleName, ranking[0].BehaviorCount)
	}

	for i := 1; i < len(ranking); i++ {
		if ranking[i].BehaviorCount > ranking[i-1].BehaviorCount {
			t.Errorf("排名应按计数降序排列，位置 %d 违反", i)
		}
	}
}

// TestBuildRoleRankingTieBreak 测试并列名次按首次出现排序
func TestBuildRoleRankingTieBreak(t *testing.T) {
	acts := []models.Act{
		{RoleName: "小明"},
		{RoleName: "云溪"},
		{RoleName: "小明"},
		{RoleName: "云溪"},
	}

	ranking := BuildRoleRanking(acts)

	if len(ranking) != 2 {
		t.Fatalf("应该产生2个排名条目，实际 %d", len(ranking))
	}
	if ranking[0].RoleName != "小明" {
		t.Errorf("并列时先出现的角色应排在前面，实际第一名是 %s", ranking[0].RoleName)
	}
}

// TestBuildRoleRankingLimit 测试排名最多保留10项
func TestBuildRoleRankingLimit(t *testing.T) {
	var acts []models.Act
	names := []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸", "子", "丑"}
	for _, n := range names {
		acts = append(acts, models.Act{RoleName: n})
	}

	ranking := BuildRoleRanking(acts)

	if len(ranking) != 10 {
		t.Errorf("排名最多保留10项，实际 %d", len(ranking))
	}
	for _, entry := range ranking {
		if entry.BehaviorCount == 0 {
			t.Errorf("排名不应包含零计数条目: %s", entry.RoleName)
		}
	}
}

// TestBuildInteractionRanking 测试互动排名的无序对归并
func TestBuildInteractionRanking(t *testing.T) {
	acts := []models.Act{
		{ActType: models.ActTypeDialog, RoleName: "云溪", TargetRoleName: "小明"},
		{ActType: models.ActTypeDialog, RoleName: "小明", TargetRoleName: "云溪"},
		{ActType: models.ActTypeDialog, RoleName: "小红", TargetRoleName: "云溪"},
		{ActType: models.ActTypeSelf, RoleName: "云溪"},
	}

	ranking := BuildInteractionRanking(acts)

	if len(ranking) != 2 {
		t.Fatalf("应该产生2个互动对，实际 %d", len(ranking))
	}

	// (云溪,小明)和(小明,云溪)应累计进同一个桶
	if ranking[0].InteractionCount != 2 {
		t.Errorf("双向互动应合并计数为2，实际 %d", ranking[0].InteractionCount)
	}

	// 互动对按字典序规范化
	if ranking[0].Role1 > ranking[0].Role2 {
		t.Errorf("互动对应按字典序排列: %s > %s", ranking[0].Role1, ranking[0].Role2)
	}
}

// TestBuildInteractionRankingSkipsUnresolved 测试未解析角色不参与互动统计
func TestBuildInteractionRankingSkipsUnresolved(t *testing.T) {
	acts := []models.Act{
		{ActType: models.ActTypeDialog, RoleName: "云溪", TargetRoleName: UnknownRoleName},
		{ActType: models.ActTypeDialog, RoleName: "", TargetRoleName: "小明"},
	}

	ranking := BuildInteractionRanking(acts)

	if ranking == nil {
		t.Fatal("无互动时应返回空序列而不是nil")
	}
	if len(ranking) != 0 {
		t.Errorf("双方未全部解析的互动不应计入，实际 %d 项", len(ranking))
	}
}

// TestAggregationViewsConsistency 测试同一批行为在三个视图中的口径一致
func TestAggregationViewsConsistency(t *testing.T) {
	acts := []models.Act{
		{ActType: models.ActTypeSelf, RoleName: "A", ActDate: "2026-03-09"},
		{ActType: models.ActTypeDialog, RoleName: "A", TargetRoleName: "B", ActDate: "2026-03-09"},
		{ActType: models.ActTypeDialog, RoleName: "B", TargetRoleName: "A", ActDate: "2026-03-10"},
	}

	dist := BuildTypeDistribution(acts)
	if len(dist) != 2 || dist[0].Count != 1 || dist[1].Count != 2 {
		t.Errorf("类型分布应为 self:1 dialog:2，实际 %v", dist)
	}

	ranking := BuildRoleRanking(acts)
	if len(ranking) != 2 || ranking[0].RoleName != "A" || ranking[0].BehaviorCount != 2 ||
		ranking[1].RoleName != "B" || ranking[1].BehaviorCount != 1 {
		t.Errorf("角色排名应为 A:2 B:1，实际 %v", ranking)
	}

	interactions := BuildInteractionRanking(acts)
	if len(interactions) != 1 || interactions[0].InteractionCount != 2 {
		t.Errorf("互动排名应为 (A,B):2，实际 %v", interactions)
	}
}

// TestBuildWeeklyTrend 测试近7天趋势
func TestBuildWeeklyTrend(t *testing.T) {
	today := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)
	acts := []models.Act{
		{ActDate: "2026-02-25"},
		{ActDate: "2026-02-25"},
		{ActDate: "2026-02-23"},
		{ActDate: "2026-02-10"}, // 窗口之外
	}

	trend := BuildWeeklyTrend(acts, today)

	if len(trend) != 7 {
		t.Fatalf("趋势应固定7项，实际 %d", len(trend))
	}

	if trend[0].Date != "02-19" {
		t.Errorf("第一项应该是02-19，实际 %s", trend[0].Date)
	}
	if trend[6].Date != "02-25" {
		t.Errorf("最后一项应该是当天02-25，实际 %s", trend[6].Date)
	}
	if trend[6].Count != 2 {
		t.Errorf("02-25应有2条行为，实际 %d", trend[6].Count)
	}
	if trend[4].Count != 1 {
		t.Errorf("02-23应有1条行为，实际 %d", trend[4].Count)
	}
	if trend[0].Count != 0 {
		t.Errorf("无行为的日子计数应为0，实际 %d", trend[0].Count)
	}
}

// TestBuildCampDistribution 测试阵营分布
func TestBuildCampDistribution(t *testing.T) {
	roles := []models.Role{
		{RoleID: 1, RoleCamp: "现代都市"},
		{RoleID: 2, RoleCamp: "现代都市"},
		{RoleID: 3, RoleCamp: "古代江湖"},
		{RoleID: 4, RoleCamp: ""},
	}

	dist := BuildCampDistribution(roles)

	if len(dist) != 3 {
		t.Fatalf("应该产生3个阵营分组，实际 %d", len(dist))
	}
	if dist[0].Camp != "现代都市" || dist[0].Count != 2 {
		t.Errorf("现代都市应有2个角色，实际 %v", dist[0])
	}
	if dist[2].Camp != UnknownCampName {
		t.Errorf("阵营缺失的角色应归入 %s，实际 %s", UnknownCampName, dist[2].Camp)
	}
}

// TestBuildHotTags 测试热门标签统计
func TestBuildHotTags(t *testing.T) {
	acts := []models.Act{
		{ActTag: "对话"},
		{ActTag: "创作"},
		{ActTag: "对话"},
		{ActTag: ""},
	}

	tags := BuildHotTags(acts)

	if len(tags) != 2 {
		t.Fatalf("空标签不应计入，应产生2项，实际 %d", len(tags))
	}
	if tags[0].TagName != "对话" || tags[0].UseCount != 2 {
		t.Errorf("热门标签第一名应是对话(2)，实际 %s(%d)", tags[0].TagName, tags[0].UseCount)
	}
}

// TestGetBehaviorStatsWithStaticProvider 测试统计视图的端到端产出
func TestGetBehaviorStatsWithStaticProvider(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	provider := store.NewStaticProvider(now)
	behavior := NewBehaviorService(provider)
	svc := NewStatsService(behavior, provider)
	svc.now = func() time.Time { return now }

	stats := svc.GetBehaviorStats(context.Background())

	if stats == nil {
		t.Fatal("统计视图不应为nil")
	}

	total := 0
	for _, tc := range stats.TypeDistribution {
		total += tc.Count
	}
	if total != 8 {
		t.Errorf("类型分布计数之和应等于行为总数8，实际 %d", total)
	}

	if len(stats.WeeklyTrend) != 7 {
		t.Errorf("周趋势应固定7项，实际 %d", len(stats.WeeklyTrend))
	}

	if len(stats.InteractionRanking) == 0 {
		t.Error("示例数据包含对话行为，互动排名不应为空")
	}
	for _, entry := range stats.InteractionRanking {
		if entry.Role1 == UnknownRoleName || entry.Role2 == UnknownRoleName {
			t.Errorf("互动排名不应包含未解析角色: %v", entry)
		}
	}
}

// TestGetBehaviorStatsFallback 测试存储不可用时降级为备用数据
func TestGetBehaviorStatsFallback(t *testing.T) {
	provider := &failingProvider{}
	behavior := NewBehaviorService(provider)
	svc := NewStatsService(behavior, provider)

	stats := svc.GetBehaviorStats(context.Background())

	if stats == nil {
		t.Fatal("存储不可用时应返回备用统计而不是nil")
	}

	expected := FallbackBehaviorStats()
	if len(stats.TypeDistribution) != len(expected.TypeDistribution) {
		t.Error("降级产出应与备用统计一致")
	}
}

// TestGetSummaryFallback 测试概览降级
func TestGetSummaryFallback(t *testing.T) {
	provider := &failingProvider{}
	behavior := NewBehaviorService(provider)
	svc := NewStatsService(behavior, provider)

	summary := svc.GetSummary(context.Background())

	expected := FallbackSummary()
	if summary.TotalRoles != expected.TotalRoles || summary.TotalBehaviors != expected.TotalBehaviors {
		t.Errorf("概览降级产出应与备用数据一致，实际 %+v", summary)
	}
}

// TestGetSummaryWithStaticProvider 测试概览的实时计数
func TestGetSummaryWithStaticProvider(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	provider := store.NewStaticProvider(now)
	behavior := NewBehaviorService(provider)
	svc := NewStatsService(behavior, provider)
	svc.now = func() time.Time { return now }

	summary := svc.GetSummary(context.Background())

	if summary.TotalRoles != 3 {
		t.Errorf("角色总数应为3，实际 %d", summary.TotalRoles)
	}
	if summary.TotalBehaviors != 8 {
		t.Errorf("行为总数应为8，实际 %d", summary.TotalBehaviors)
	}
	if summary.TodayBehaviors != 2 {
		t.Errorf("今日行为数应为2，实际 %d", summary.TodayBehaviors)
	}
}
