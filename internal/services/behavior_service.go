// internal/services/behavior_service.go
package services

import (
	"context"
	"time"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
)

// UnknownRoleName 角色ID无法解析时的占位名称
const UnknownRoleName = "未知"

// UnknownTimeLabel 时间字段缺失时的占位文本
const UnknownTimeLabel = "未知时间"

// actTimeLayouts 行为时间的候选解析格式，按出现频率排列
var actTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
}

// BehaviorService 行为记录服务
// 负责把存储层的原始行记录规范化为带展开显示字段的标准形态
type BehaviorService struct {
	Provider store.DataProvider
}

// NewBehaviorService 创建行为记录服务
func NewBehaviorService(provider store.DataProvider) *BehaviorService {
	if provider == nil {
		panic("DataProvider cannot be nil")
	}
	return &BehaviorService{Provider: provider}
}

// RoleNameTable 构建角色ID到名称的查找表
func RoleNameTable(roles []models.Role) map[int64]string {
	names := make(map[int64]string, len(roles))
	for _, r := range roles {
		names[r.RoleID] = r.RoleName
	}
	return names
}

// NormalizeAct 将角色引用展开为顶层显示字段（纯函数）
// 无法解析的角色ID落回占位名称而不是报错；
// 已规范化的记录再次规范化是幂等操作
func NormalizeAct(act models.Act, names map[int64]string) models.Act {
	if name, ok := names[act.RoleID]; ok {
		act.RoleName = name
	} else if act.RoleName == "" {
		act.RoleName = UnknownRoleName
	}

	if act.TargetRoleID != nil {
		if name, ok := names[*act.TargetRoleID]; ok {
			act.TargetRoleName = name
		} else if act.TargetRoleName == "" {
			act.TargetRoleName = UnknownRoleName
		}
	}

	return act
}

// NormalizeActs 批量规范化，保持输入顺序
func NormalizeActs(acts []models.Act, names map[int64]string) []models.Act {
	normalized := make([]models.Act, len(acts))
	for i, a := range acts {
		normalized[i] = NormalizeAct(a, names)
	}
	return normalized
}

// ListBehaviors 返回规范化后的行为记录，按时间倒序
// 存储错误以结构化错误原样上抛，由调用方决定是否降级
func (s *BehaviorService) ListBehaviors(ctx context.Context, limit int) ([]models.Act, error) {
	acts, err := s.Provider.ListActs(ctx, limit)
	if err != nil {
		return nil, err
	}

	roles, err := s.Provider.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	return NormalizeActs(acts, RoleNameTable(roles)), nil
}

// ListRoles 返回全部角色
func (s *BehaviorService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.Provider.ListRoles(ctx)
}

// GetRole 返回单个角色
func (s *BehaviorService) GetRole(ctx context.Context, roleID int64) (*models.Role, error) {
	return s.Provider.GetRole(ctx, roleID)
}

// GetBehaviorDetail 返回行为及其详情的聚合
// 自主行为附带叙事详情，交互行为附带按轮次排列的对话内容
func (s *BehaviorService) GetBehaviorDetail(ctx context.Context, actID int64) (*models.ActDetail, error) {
	act, err := s.Provider.GetAct(ctx, actID)
	if err != nil {
		return nil, err
	}

	roles, err := s.Provider.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	detail := &models.ActDetail{
		Act: NormalizeAct(*act, RoleNameTable(roles)),
	}

	if act.IsDialog() {
		turns, err := s.Provider.ListDialogTurns(ctx, actID)
		if err == nil {
			detail.Dialogs = turns
		}
	} else {
		d, err := s.Provider.GetActDetail(ctx, actID)
		if err == nil {
			detail.Detail = d
		}
	}

	return detail, nil
}

// FormatActTime 把存储的时间字符串格式化为短显示形态
// 解析失败时返回原始字符串而不是让整条记录失败
func FormatActTime(raw string) string {
	if raw == "" {
		return UnknownTimeLabel
	}

	for _, layout := range actTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("01-02 15:04")
		}
	}

	return raw
}
