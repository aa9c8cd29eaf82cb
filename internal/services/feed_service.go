// internal/services/feed_service.go
package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
	"github.com/Corphon/RoleScope/internal/utils"
)

const (
	// ContentPlaceholder 详情缺失时的占位内容
	ContentPlaceholder = "暂无内容"
	// DefaultActLabel 标签缺失时的占位标签
	DefaultActLabel = "行为"

	// 活跃度分级阈值（依据今日行为数）
	activityHighThreshold   = 10
	activityMediumThreshold = 5

	// 角色标签的目标数量与各字段的取词上限
	tagTarget        = 5
	tagTokensPerField = 2
	// 角色自由文本字段的分词符
	tagDelimiter = "、"

	// 无记忆数据时合成的评论条数
	syntheticCommentCount = 2

	// 头像生成服务的地址模板
	avatarURLTemplate = "https://trae-api-cn.mchost.guru/api/ide/v1/text_to_image?prompt=%s&image_size=square"
)

// tagPadVocabulary 标签数量不足时按序补齐的固定词表
var tagPadVocabulary = []string{"文学", "历史", "哲学", "美术", "音乐", "科技", "旅行", "饮酒", "月亮"}

// syntheticCommentTargets 合成评论指向的角色名固定词表
var syntheticCommentTargets = []string{"李白", "杜甫", "苏轼", "李清照", "陶渊明", "屈原"}

// syntheticRoleNames 角色完全缺失时合成档案使用的名字
var syntheticRoleNames = []string{"李白", "杜甫", "苏轼", "李清照", "王维", "陶渊明", "屈原", "白居易", "刘禹锡", "杜牧"}

// FeedService 角色活动组合服务
// 把单个角色的行为、详情与记忆组合成作品/评论/动态三个区块；
// 单条详情获取失败只降级该条内容，角色本身缺失才整体降级为合成档案
type FeedService struct {
	Provider store.DataProvider

	// 供测试注入固定时钟
	now func() time.Time
}

// NewFeedService 创建角色活动组合服务
func NewFeedService(provider store.DataProvider) *FeedService {
	if provider == nil {
		panic("DataProvider cannot be nil")
	}
	return &FeedService{Provider: provider, now: time.Now}
}

// fetchedDetail 并发获取的单条行为详情
type fetchedDetail struct {
	content string
	ok      bool
}

// GetRoleFeed 组合单个角色的完整活动视图
// 任何失败模式都有定义好的降级产出，绝不向展示层返回错误
func (s *FeedService) GetRoleFeed(ctx context.Context, roleID int64) *models.RoleFeed {
	role, err := s.Provider.GetRole(ctx, roleID)
	if err != nil || role == nil {
		utils.GetLogger().Warnf("角色 %d 数据不可用，返回合成档案: %v", roleID, err)
		return s.syntheticFeed(roleID)
	}

	// 行为列表查询失败时整体降级，不返回区块残缺的真实档案
	acts, err := s.Provider.ListActs(ctx, 0)
	if err != nil {
		utils.GetLogger().Warnf("获取角色 %d 行为记录失败，返回合成档案: %v", roleID, err)
		return s.syntheticFeed(roleID)
	}

	// 过滤出该角色的行为，保持来源顺序（按时间倒序）
	var roleActs []models.Act
	for _, a := range acts {
		if a.RoleID == roleID {
			roleActs = append(roleActs, a)
		}
	}

	// 详情并发获取后按行为ID重新关联，完成顺序不影响产出顺序
	details := s.fetchDetails(ctx, roleActs)

	todayActs := s.todayActCount(ctx, role)

	return &models.RoleFeed{
		ID:            fmt.Sprintf("%d", role.RoleID),
		Name:          role.RoleName,
		Title:         orDefault(role.RoleIdentity, "未知"),
		Description:   orDefault(role.RolePersonality, "暂无描述"),
		Model:         orDefault(role.LLMModel, "qwen3:0.6b"),
		Quota:         buildQuota(role),
		TodayActs:     todayActs,
		ActivityLevel: ActivityLevel(todayActs),
		Tags:          DeriveTags(role),
		Avatar:        AvatarURL(role.RoleName),
		Posts:         buildPosts(roleActs, details),
		Comments:      s.buildComments(ctx, role),
		Timeline:      buildTimeline(roleActs, details),
	}
}

// fetchDetails 并发抓取每条行为的详情内容
// 结果以行为ID为键收集，读取失败的条目缺席，下游以占位内容代替
func (s *FeedService) fetchDetails(ctx context.Context, acts []models.Act) map[int64]fetchedDetail {
	details := make(map[int64]fetchedDetail, len(acts))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, act := range acts {
		wg.Add(1)
		go func(act models.Act) {
			defer wg.Done()

			var content string
			var ok bool

			if act.IsDialog() {
				turns, err := s.Provider.ListDialogTurns(ctx, act.ActID)
				if err == nil && len(turns) > 0 {
					content = FlattenDialog(turns)
					ok = true
				}
			} else {
				d, err := s.Provider.GetActDetail(ctx, act.ActID)
				if err == nil && d != nil && d.SelfActContent != "" {
					content = d.SelfActContent
					ok = true
				}
			}

			mu.Lock()
			details[act.ActID] = fetchedDetail{content: content, ok: ok}
			mu.Unlock()
		}(act)
	}

	wg.Wait()
	return details
}

// buildPosts 构建作品区块：只取自主行为，内容来自叙事详情
// 详情缺失的条目保留并填入占位内容，单条失败不中断整个区块
func buildPosts(acts []models.Act, details map[int64]fetchedDetail) []models.Post {
	posts := make([]models.Post, 0)
	for _, act := range acts {
		if act.IsDialog() {
			continue
		}

		content := ContentPlaceholder
		if d, found := details[act.ActID]; found && d.ok {
			content = d.content
		}

		posts = append(posts, models.Post{
			ID:        fmt.Sprintf("%d", act.ActID),
			Content:   content,
			Type:      orDefault(act.ActTag, DefaultActLabel),
			CreatedAt: act.ActTime,
		})
	}
	return posts
}

// buildComments 构建评论区块
// 有记忆数据时逐条映射；完全没有时合成固定数量的占位评论，
// 保证界面不空——这是兼容既有前端的明确降级行为
func (s *FeedService) buildComments(ctx context.Context, role *models.Role) []models.Comment {
	memories, err := s.Provider.ListMemories(ctx, role.RoleID)
	if err != nil {
		utils.GetLogger().Warnf("获取角色 %d 记忆失败，合成评论: %v", role.RoleID, err)
		return SyntheticComments(role.RoleName, s.now())
	}

	if len(memories) == 0 {
		return SyntheticComments(role.RoleName, s.now())
	}

	comments := make([]models.Comment, 0, len(memories))
	for _, m := range memories {
		name := orDefault(m.ToRoleName, "其他角色")
		comments = append(comments, models.Comment{
			ID: fmt.Sprintf("%d", m.MemoryID),
			ToRole: models.CommentRole{
				ID:     fmt.Sprintf("%d", m.ToRoleID),
				Name:   name,
				Avatar: AvatarURL(name),
			},
			Content:   orDefault(m.MemoryContent, ContentPlaceholder),
			CreatedAt: m.CreateTime,
		})
	}
	return comments
}

// buildTimeline 构建动态区块：该角色的全部行为按来源顺序排列
// 自主行为取叙事内容，交互行为把对话逐轮展平为多行转写
func buildTimeline(acts []models.Act, details map[int64]fetchedDetail) []models.TimelineEvent {
	timeline := make([]models.TimelineEvent, 0, len(acts))
	for _, act := range acts {
		content := ContentPlaceholder
		if d, found := details[act.ActID]; found && d.ok {
			content = d.content
		}

		timeline = append(timeline, models.TimelineEvent{
			ID:          fmt.Sprintf("%d", act.ActID),
			Time:        FormatActTime(act.ActTime),
			Type:        orDefault(act.ActType, DefaultActLabel),
			Description: orDefault(act.ActTag, "行为记录"),
			Content:     content,
		})
	}
	return timeline
}

// FlattenDialog 把对话轮次展平为"发言人: 内容"的多行转写
// 按轮次升序排列，轮次编号有空洞也照常处理
func FlattenDialog(turns []models.DialogTurn) string {
	sorted := make([]models.DialogTurn, len(turns))
	copy(sorted, turns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DialogRound < sorted[j].DialogRound
	})

	lines := make([]string, 0, len(sorted))
	for _, t := range sorted {
		lines = append(lines, t.SpeakerName+": "+t.DialogContent)
	}
	return strings.Join(lines, "\n")
}

// ActivityLevel 活跃度三级阶梯函数
func ActivityLevel(todayActs int) string {
	switch {
	case todayActs >= activityHighThreshold:
		return "high"
	case todayActs >= activityMediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

// DeriveTags 从角色档案派生描述性标签
// 阵营整体作为一个标签，身份和性格各取前2个分词，
// 不足时按固定词表顺序补齐到5个——同一角色的结果是确定的
func DeriveTags(role *models.Role) []string {
	var tags []string

	if role.RoleCamp != "" {
		tags = append(tags, role.RoleCamp)
	}
	tags = append(tags, splitTokens(role.RoleIdentity)...)
	tags = append(tags, splitTokens(role.RolePersonality)...)

	for i := 0; len(tags) < tagTarget; i++ {
		tags = append(tags, tagPadVocabulary[len(tags)%len(tagPadVocabulary)])
	}

	return tags[:tagTarget]
}

// splitTokens 取自由文本字段的前几个分词
func splitTokens(field string) []string {
	if field == "" {
		return nil
	}

	parts := strings.Split(field, tagDelimiter)
	if len(parts) > tagTokensPerField {
		parts = parts[:tagTokensPerField]
	}

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// SyntheticComments 合成固定数量的占位评论
// 指向词表中互不相同的其他角色，相同的角色名和基准时间产出完全一致
func SyntheticComments(roleName string, base time.Time) []models.Comment {
	comments := make([]models.Comment, 0, syntheticCommentCount)
	for i := 0; i < syntheticCommentCount; i++ {
		target := syntheticCommentTargets[i%len(syntheticCommentTargets)]
		comments = append(comments, models.Comment{
			ID: fmt.Sprintf("comment-%d", i),
			ToRole: models.CommentRole{
				ID:     fmt.Sprintf("%d", i+1),
				Name:   target,
				Avatar: AvatarURL(target),
			},
			Content:   fmt.Sprintf("对%s的评论 %d：这是一段示例评论。", target, i+1),
			CreatedAt: base.Add(-time.Duration(i+1) * 12 * time.Hour).Format(time.RFC3339),
		})
	}
	return comments
}

// AvatarURL 根据角色名生成头像地址
func AvatarURL(roleName string) string {
	prompt := roleName + " AI character traditional Chinese painting style"
	return fmt.Sprintf(avatarURLTemplate, url.QueryEscape(prompt))
}

// todayActCount 统计角色今日的行为数量
// 存储查询失败时落回角色档案自带的计数字段
func (s *FeedService) todayActCount(ctx context.Context, role *models.Role) int {
	today := s.now().Format("2006-01-02")
	count, err := s.Provider.CountActs(ctx, &store.ActFilter{
		RoleID:  &role.RoleID,
		ActDate: today,
	})
	if err != nil {
		return role.TodayActCount
	}
	return count
}

// buildQuota 组装角色额度信息
func buildQuota(role *models.Role) models.RoleQuota {
	return models.RoleQuota{
		Used:      role.UsedQuota,
		Remaining: role.RemainingQuota,
		Total:     role.UsedQuota + role.RemainingQuota,
	}
}

// syntheticFeed 角色数据整体不可用时的合成档案
// 以角色ID为种子从固定词表取材，同一ID的结果是确定的，
// 保证展示层永远有可渲染的内容
func (s *FeedService) syntheticFeed(roleID int64) *models.RoleFeed {
	idx := int(roleID % int64(len(syntheticRoleNames)))
	if idx < 0 {
		idx += len(syntheticRoleNames)
	}
	name := syntheticRoleNames[idx]
	base := s.now()

	posts := make([]models.Post, 0, 3)
	postTypes := []string{"诗词", "散文", "评论"}
	for i := 0; i < 3; i++ {
		posts = append(posts, models.Post{
			ID:        fmt.Sprintf("post-%d", i),
			Content:   fmt.Sprintf("%s的示例内容 %d：这是一段示例文本，展示角色发布的内容。", name, i+1),
			Type:      postTypes[i%len(postTypes)],
			CreatedAt: base.Add(-time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
		})
	}

	timeline := make([]models.TimelineEvent, 0, 5)
	eventTypes := []string{"行为", "创作", "互动", "思考", "观察"}
	eventDescs := []string{"生成行为数据", "创作内容", "与其他角色互动", "深度思考", "观察周围环境"}
	for i := 0; i < 5; i++ {
		at := base.Add(-time.Duration(i) * time.Hour)
		timeline = append(timeline, models.TimelineEvent{
			ID:          fmt.Sprintf("timeline-%d", i),
			Time:        at.Format(time.RFC3339),
			Type:        eventTypes[i%len(eventTypes)],
			Description: eventDescs[i%len(eventDescs)],
			Content:     fmt.Sprintf("%s在%s进行了一次%s。", name, at.Format("15:04"), eventDescs[i%len(eventDescs)]),
		})
	}

	tags := make([]string, 0, tagTarget)
	for i := 0; i < tagTarget; i++ {
		tags = append(tags, tagPadVocabulary[(idx+i)%len(tagPadVocabulary)])
	}

	return &models.RoleFeed{
		ID:            fmt.Sprintf("%d", roleID),
		Name:          name,
		Title:         "历史人物",
		Description:   fmt.Sprintf("%s是中国历史上著名的人物，以其独特的个性和成就而闻名。", name),
		Model:         "qwen3:0.6b",
		Quota:         models.RoleQuota{Used: 120, Remaining: 380, Total: 500},
		TodayActs:     0,
		ActivityLevel: ActivityLevel(0),
		Tags:          tags,
		Avatar:        AvatarURL(name),
		Posts:         posts,
		Comments:      SyntheticComments(name, base),
		Timeline:      timeline,
	}
}

// orDefault 空字符串落回默认值
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
