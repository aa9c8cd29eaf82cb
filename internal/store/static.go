// internal/store/static.go
package store

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Corphon/RoleScope/internal/errors"
	"github.com/Corphon/RoleScope/internal/models"
)

// StaticProvider 静态备用数据源
// 字段形状与实时数据完全一致，在存储不可用或配置了模拟模式时
// 替代实时数据源，保证整条管线始终可以端到端运转
type StaticProvider struct {
	roles    []models.Role
	acts     []models.Act
	details  map[int64]models.SelfActDetail
	dialogs  map[int64][]models.DialogTurn
	memories map[int64][]models.Memory
}

// NewStaticProvider 构建静态数据源
// 行为日期以构建时刻为基准向前铺开，保证近7天趋势有内容可看
func NewStaticProvider(now time.Time) *StaticProvider {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	stamp := func(offset int, clock string) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02") + "T" + clock + "Z"
	}
	target := func(id int64) *int64 { return &id }

	p := &StaticProvider{
		roles: []models.Role{
			{
				RoleID: 1, RoleName: "云溪", RoleCamp: "现代都市", RoleIdentity: "AI程序员",
				RolePersonality: "理性冷静、逻辑清晰、追求完美", RoleFeature: "喜欢编程和音乐",
				LLMModel: "deepseek-v3.1:671b-cloud", DailyActLimit: 3, IsHistorical: 0,
				Status: "alive", UsedQuota: 124, RemainingQuota: 9876,
			},
			{
				RoleID: 2, RoleName: "小明", RoleCamp: "现代都市", RoleIdentity: "学生",
				RolePersonality: "活泼开朗、好奇心强", RoleFeature: "喜欢游戏和动画",
				LLMModel: "qwen2.5:14b", DailyActLimit: 5, IsHistorical: 0,
				Status: "alive", UsedQuota: 1457, RemainingQuota: 8543,
			},
			{
				RoleID: 3, RoleName: "小红", RoleCamp: "古代江湖", RoleIdentity: "侠女",
				RolePersonality: "正直勇敢、乐于助人", RoleFeature: "擅长剑术",
				LLMModel: "llama3.2", DailyActLimit: 4, IsHistorical: 1,
				Status: "alive", UsedQuota: 2346, RemainingQuota: 7654,
			},
		},
		acts: []models.Act{
			{ActID: 1, RoleID: 1, ActDate: day(0), ActTime: stamp(0, "10:30:00"),
				ActType: models.ActTypeSelf, ActTag: "思考", OutputType: "text"},
			{ActID: 2, RoleID: 2, TargetRoleID: target(1), ActDate: day(0), ActTime: stamp(0, "09:00:00"),
				ActType: models.ActTypeDialog, ActTag: "对话", OutputType: "dialog"},
			{ActID: 3, RoleID: 1, TargetRoleID: target(2), ActDate: day(-1), ActTime: stamp(-1, "16:45:00"),
				ActType: models.ActTypeDialog, ActTag: "对话", OutputType: "dialog"},
			{ActID: 4, RoleID: 3, ActDate: day(-1), ActTime: stamp(-1, "11:20:00"),
				ActType: models.ActTypeSelf, ActTag: "创作", OutputType: "text"},
			{ActID: 5, RoleID: 2, ActDate: day(-2), ActTime: stamp(-2, "14:05:00"),
				ActType: models.ActTypeSelf, ActTag: "学习", OutputType: "text"},
			{ActID: 6, RoleID: 1, ActDate: day(-3), ActTime: stamp(-3, "20:10:00"),
				ActType: models.ActTypeSelf, ActTag: "创作", OutputType: "text"},
			{ActID: 7, RoleID: 3, TargetRoleID: target(1), ActDate: day(-4), ActTime: stamp(-4, "13:30:00"),
				ActType: models.ActTypeDialog, ActTag: "对话", OutputType: "dialog"},
			{ActID: 8, RoleID: 2, ActDate: day(-6), ActTime: stamp(-6, "08:15:00"),
				ActType: models.ActTypeSelf, ActTag: "休息", OutputType: "text"},
		},
		details: map[int64]models.SelfActDetail{
			1: {ActID: 1, SelfActContent: "今天重构了一段旧代码，把重复的逻辑收敛成了一个通用函数。",
				OutputContent: "一段整洁的代码", LLMModel: "deepseek-v3.1:671b-cloud"},
			4: {ActID: 4, SelfActContent: "在山间练了一套剑法，写下一首短诗记录心境。",
				OutputContent: "七言绝句一首", LLMModel: "llama3.2"},
			5: {ActID: 5, SelfActContent: "读完了一本关于天文的科普书，记了三页笔记。",
				OutputContent: "读书笔记", LLMModel: "qwen2.5:14b"},
			6: {ActID: 6, SelfActContent: "深夜写了一段关于城市灯光的随笔。",
				OutputContent: "随笔一篇", LLMModel: "deepseek-v3.1:671b-cloud"},
			8: {ActID: 8, SelfActContent: "睡了个懒觉，醒来后整理了房间。",
				OutputContent: "无", LLMModel: "qwen2.5:14b"},
		},
		dialogs: map[int64][]models.DialogTurn{
			2: {
				{ActID: 2, SpeakerRoleID: 2, SpeakerName: "小明", DialogContent: "云溪姐，这段代码为什么跑不起来？", DialogRound: 1},
				{ActID: 2, SpeakerRoleID: 1, SpeakerName: "云溪", DialogContent: "你把循环变量写错了，改成 i 再试试。", DialogRound: 2},
				{ActID: 2, SpeakerRoleID: 2, SpeakerName: "小明", DialogContent: "真的可以了，谢谢！", DialogRound: 3},
			},
			3: {
				{ActID: 3, SpeakerRoleID: 1, SpeakerName: "云溪", DialogContent: "最近学习进度怎么样？", DialogRound: 1},
				{ActID: 3, SpeakerRoleID: 2, SpeakerName: "小明", DialogContent: "数学有点难，不过我在坚持。", DialogRound: 2},
			},
			7: {
				{ActID: 7, SpeakerRoleID: 3, SpeakerName: "小红", DialogContent: "听说你会写程序，能教教我吗？", DialogRound: 1},
				{ActID: 7, SpeakerRoleID: 1, SpeakerName: "云溪", DialogContent: "当然可以，从变量讲起吧。", DialogRound: 2},
			},
		},
		memories: map[int64][]models.Memory{
			1: {
				{MemoryID: 1, RoleID: 1, ToRoleID: 2, ToRoleName: "小明",
					MemoryContent: "小明很好学，遇到问题会主动请教。", CreateTime: stamp(-1, "18:00:00")},
				{MemoryID: 2, RoleID: 1, ToRoleID: 3, ToRoleName: "小红",
					MemoryContent: "小红对编程产生了兴趣，约好下次继续讲。", CreateTime: stamp(-4, "15:00:00")},
			},
		},
	}

	return p
}

// ListActs 按行为时间倒序返回行为记录
func (p *StaticProvider) ListActs(_ context.Context, limit int) ([]models.Act, error) {
	acts := make([]models.Act, len(p.acts))
	copy(acts, p.acts)
	if limit > 0 && limit < len(acts) {
		acts = acts[:limit]
	}
	return acts, nil
}

// GetAct 按ID返回单条行为记录
func (p *StaticProvider) GetAct(_ context.Context, actID int64) (*models.Act, error) {
	for _, a := range p.acts {
		if a.ActID == actID {
			act := a
			return &act, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("行为记录不存在: %d", actID), nil)
}

// ListRoles 返回全部角色
func (p *StaticProvider) ListRoles(_ context.Context) ([]models.Role, error) {
	roles := make([]models.Role, len(p.roles))
	copy(roles, p.roles)
	return roles, nil
}

// GetRole 按ID返回单个角色
func (p *StaticProvider) GetRole(_ context.Context, roleID int64) (*models.Role, error) {
	for _, r := range p.roles {
		if r.RoleID == roleID {
			role := r
			return &role, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("角色不存在: %d", roleID), nil)
}

// GetActDetail 返回自主行为的叙事详情
func (p *StaticProvider) GetActDetail(_ context.Context, actID int64) (*models.SelfActDetail, error) {
	if d, ok := p.details[actID]; ok {
		detail := d
		return &detail, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("行为详情不存在: %d", actID), nil)
}

// ListDialogTurns 按轮次升序返回对话内容
func (p *StaticProvider) ListDialogTurns(_ context.Context, actID int64) ([]models.DialogTurn, error) {
	turns := make([]models.DialogTurn, len(p.dialogs[actID]))
	copy(turns, p.dialogs[actID])
	return turns, nil
}

// ListMemories 返回指定角色的记忆注记
func (p *StaticProvider) ListMemories(_ context.Context, roleID int64) ([]models.Memory, error) {
	memories := make([]models.Memory, len(p.memories[roleID]))
	copy(memories, p.memories[roleID])
	return memories, nil
}

// CountActs 按过滤条件统计行为数量
func (p *StaticProvider) CountActs(_ context.Context, filter *ActFilter) (int, error) {
	count := 0
	for _, a := range p.acts {
		if filter != nil {
			if filter.RoleID != nil && a.RoleID != *filter.RoleID {
				continue
			}
			if filter.ActDate != "" && a.ActDate != filter.ActDate {
				continue
			}
		}
		count++
	}
	return count, nil
}

// CountRoles 统计角色总数
func (p *StaticProvider) CountRoles(_ context.Context) (int, error) {
	return len(p.roles), nil
}

// CountMemories 统计记忆总数
func (p *StaticProvider) CountMemories(_ context.Context) (int, error) {
	total := 0
	for _, ms := range p.memories {
		total += len(ms)
	}
	return total, nil
}
