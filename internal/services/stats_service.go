// internal/services/stats_service.go
package services

import (
	"context"
	"sort"
	"time"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
	"github.com/Corphon/RoleScope/internal/utils"
)

const (
	// UnknownTypeName 类型字段缺失时的归组名称
	UnknownTypeName = "unknown"
	// UnknownCampName 阵营字段缺失时的归组名称
	UnknownCampName = "未知"

	// 排名视图最多保留的条目数
	rankingLimit = 10
	// 趋势视图覆盖的天数（含当天）
	trendDays = 7
)

// StatsService 统计聚合服务
// 四个派生视图都是同一份规范化行为集合上的纯函数：
// 不修改输入，相同输入必然得到相同输出
type StatsService struct {
	Behavior *BehaviorService
	Provider store.DataProvider

	// 供测试注入固定时钟
	now func() time.Time
}

// NewStatsService 创建统计聚合服务
func NewStatsService(behavior *BehaviorService, provider store.DataProvider) *StatsService {
	if behavior == nil {
		panic("BehaviorService cannot be nil")
	}
	return &StatsService{
		Behavior: behavior,
		Provider: provider,
		now:      time.Now,
	}
}

// ========================================
// 纯聚合函数
// ========================================

// BuildTypeDistribution 按行为类型分组计数
// 类型缺失的记录归入 unknown 而不是被丢弃，各项计数之和等于行为总数
func BuildTypeDistribution(acts []models.Act) []models.TypeCount {
	counts := make(map[string]int)
	var order []string

	for _, a := range acts {
		t := a.ActType
		if t == "" {
			t = UnknownTypeName
		}
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	dist := make([]models.TypeCount, 0, len(order))
	for _, t := range order {
		dist = append(dist, models.TypeCount{Type: t, Count: counts[t]})
	}
	return dist
}

// BuildRoleRanking 按角色名分组计数后取前10
// 并列名次按角色在输入中首次出现的先后排序，不产出零计数条目
func BuildRoleRanking(acts []models.Act) []models.RoleRankEntry {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, a := range acts {
		name := a.RoleName
		if name == "" {
			name = UnknownRoleName
		}
		if _, seen := counts[name]; !seen {
			firstSeen[name] = i
		}
		counts[name]++
	}

	ranking := make([]models.RoleRankEntry, 0, len(counts))
	for name, count := range counts {
		ranking = append(ranking, models.RoleRankEntry{RoleName: name, BehaviorCount: count})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].BehaviorCount != ranking[j].BehaviorCount {
			return ranking[i].BehaviorCount > ranking[j].BehaviorCount
		}
		return firstSeen[ranking[i].RoleName] < firstSeen[ranking[j].RoleName]
	})

	if len(ranking) > rankingLimit {
		ranking = ranking[:rankingLimit]
	}
	return ranking
}

// BuildInteractionRanking 统计角色两两之间的互动次数
// 互动对按字典序规范化，(A,B)和(B,A)累计进同一个桶；
// 没有交互行为时返回空序列而不是nil
func BuildInteractionRanking(acts []models.Act) []models.InteractionEntry {
	type pair struct{ a, b string }
	counts := make(map[pair]int)
	firstSeen := make(map[pair]int)

	for i, act := range acts {
		if !act.IsDialog() {
			continue
		}
		// 双方角色都必须解析成功
		if act.RoleName == "" || act.RoleName == UnknownRoleName {
			continue
		}
		if act.TargetRoleName == "" || act.TargetRoleName == UnknownRoleName {
			continue
		}

		p := pair{a: act.RoleName, b: act.TargetRoleName}
		if p.a > p.b {
			p.a, p.b = p.b, p.a
		}
		if _, seen := counts[p]; !seen {
			firstSeen[p] = i
		}
		counts[p]++
	}

	ranking := make([]models.InteractionEntry, 0, len(counts))
	for p, count := range counts {
		ranking = append(ranking, models.InteractionEntry{
			Role1:            p.a,
			Role2:            p.b,
			InteractionCount: count,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].InteractionCount != ranking[j].InteractionCount {
			return ranking[i].InteractionCount > ranking[j].InteractionCount
		}
		pi := pair{ranking[i].Role1, ranking[i].Role2}
		pj := pair{ranking[j].Role1, ranking[j].Role2}
		return firstSeen[pi] < firstSeen[pj]
	})

	return ranking
}

// BuildWeeklyTrend 统计截至today（含）的近7天行为趋势
// 按存储的日期字段做字符串精确匹配，不做时区换算；
// 结果固定7项，时间升序，无行为的日子计数为0
func BuildWeeklyTrend(acts []models.Act, today time.Time) []models.TrendPoint {
	byDate := make(map[string]int)
	for _, a := range acts {
		byDate[a.ActDate]++
	}

	trend := make([]models.TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		trend = append(trend, models.TrendPoint{
			Date:  d.Format("01-02"),
			Count: byDate[d.Format("2006-01-02")],
		})
	}
	return trend
}

// BuildCampDistribution 按阵营分组统计角色数
func BuildCampDistribution(roles []models.Role) []models.CampCount {
	counts := make(map[string]int)
	var order []string

	for _, r := range roles {
		camp := r.RoleCamp
		if camp == "" {
			camp = UnknownCampName
		}
		if _, seen := counts[camp]; !seen {
			order = append(order, camp)
		}
		counts[camp]++
	}

	dist := make([]models.CampCount, 0, len(order))
	for _, camp := range order {
		dist = append(dist, models.CampCount{Camp: camp, Count: counts[camp]})
	}
	return dist
}

// BuildHotTags 按标签分组统计使用次数，倒序取前10
func BuildHotTags(acts []models.Act) []models.HotTag {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, a := range acts {
		if a.ActTag == "" {
			continue
		}
		if _, seen := counts[a.ActTag]; !seen {
			firstSeen[a.ActTag] = i
		}
		counts[a.ActTag]++
	}

	tags := make([]models.HotTag, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, models.HotTag{TagName: tag, UseCount: count})
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].UseCount != tags[j].UseCount {
			return tags[i].UseCount > tags[j].UseCount
		}
		return firstSeen[tags[i].TagName] < firstSeen[tags[j].TagName]
	})

	if len(tags) > rankingLimit {
		tags = tags[:rankingLimit]
	}
	return tags
}

// ========================================
// 对外视图
// ========================================

// GetBehaviorStats 返回行为统计聚合视图
// 存储不可用时记录日志并降级为静态替代数据，不向调用方报错
func (s *StatsService) GetBehaviorStats(ctx context.Context) *models.BehaviorStats {
	acts, err := s.Behavior.ListBehaviors(ctx, 0)
	if err != nil {
		utils.GetLogger().Warnf("获取行为记录失败，使用备用统计数据: %v", err)
		return FallbackBehaviorStats()
	}

	return &models.BehaviorStats{
		TypeDistribution:    BuildTypeDistribution(acts),
		RoleBehaviorRanking: BuildRoleRanking(acts),
		InteractionRanking:  BuildInteractionRanking(acts),
		WeeklyTrend:         BuildWeeklyTrend(acts, s.now()),
	}
}

// GetSummary 返回全局统计概览
func (s *StatsService) GetSummary(ctx context.Context) *models.Summary {
	totalRoles, err := s.Provider.CountRoles(ctx)
	if err != nil {
		utils.GetLogger().Warnf("统计角色数量失败，使用备用概览数据: %v", err)
		return FallbackSummary()
	}

	totalActs, err := s.Provider.CountActs(ctx, nil)
	if err != nil {
		utils.GetLogger().Warnf("统计行为数量失败，使用备用概览数据: %v", err)
		return FallbackSummary()
	}

	totalMemories, err := s.Provider.CountMemories(ctx)
	if err != nil {
		utils.GetLogger().Warnf("统计记忆数量失败，使用备用概览数据: %v", err)
		return FallbackSummary()
	}

	today := s.now().Format("2006-01-02")
	todayActs, err := s.Provider.CountActs(ctx, &store.ActFilter{ActDate: today})
	if err != nil {
		utils.GetLogger().Warnf("统计今日行为失败，使用备用概览数据: %v", err)
		return FallbackSummary()
	}

	return &models.Summary{
		TotalRoles:     totalRoles,
		TotalBehaviors: totalActs,
		TotalMemories:  totalMemories,
		TodayBehaviors: todayActs,
	}
}

// GetRoleStats 返回阵营分布视图
func (s *StatsService) GetRoleStats(ctx context.Context) *models.RoleStats {
	roles, err := s.Provider.ListRoles(ctx)
	if err != nil {
		utils.GetLogger().Warnf("获取角色列表失败，使用备用阵营数据: %v", err)
		return FallbackRoleStats()
	}

	return &models.RoleStats{CampDistribution: BuildCampDistribution(roles)}
}

// GetHotTags 返回热门行为标签
func (s *StatsService) GetHotTags(ctx context.Context) []models.HotTag {
	acts, err := s.Provider.ListActs(ctx, 0)
	if err != nil {
		utils.GetLogger().Warnf("获取行为记录失败，使用备用标签数据: %v", err)
		return FallbackHotTags()
	}

	return BuildHotTags(acts)
}
