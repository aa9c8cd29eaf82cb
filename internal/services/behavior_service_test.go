// internal/services/behavior_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/Corphon/RoleScope/internal/errors"
	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
)

// TestNormalizeAct 测试角色引用展开
func TestNormalizeAct(t *testing.T) {
	names := map[int64]string{1: "云溪", 2: "小明"}
	targetID := int64(2)

	act := models.Act{ActID: 10, RoleID: 1, TargetRoleID: &targetID, ActType: models.ActTypeDialog}
	normalized := NormalizeAct(act, names)

	if normalized.RoleName != "云溪" {
		t.Errorf("发起方名称应为云溪，实际 %s", normalized.RoleName)
	}
	if normalized.TargetRoleName != "小明" {
		t.Errorf("目标方名称应为小明，实际 %s", normalized.TargetRoleName)
	}
}

// TestNormalizeActUnresolved 测试无法解析的角色落回占位名称
func TestNormalizeActUnresolved(t *testing.T) {
	names := map[int64]string{}
	targetID := int64(99)

	act := models.Act{ActID: 10, RoleID: 42, TargetRoleID: &targetID}
	normalized := NormalizeAct(act, names)

	if normalized.RoleName != UnknownRoleName {
		t.Errorf("无法解析的发起方应为 %s，实际 %s", UnknownRoleName, normalized.RoleName)
	}
	if normalized.TargetRoleName != UnknownRoleName {
		t.Errorf("无法解析的目标方应为 %s，实际 %s", UnknownRoleName, normalized.TargetRoleName)
	}
}

// TestNormalizeActIdempotent 测试规范化的幂等性
func TestNormalizeActIdempotent(t *testing.T) {
	names := map[int64]string{1: "云溪"}

	act := models.Act{ActID: 10, RoleID: 1}
	once := NormalizeAct(act, names)
	twice := NormalizeAct(once, names)

	if once != twice {
		t.Errorf("重复规范化应是幂等操作: %+v != %+v", once, twice)
	}

	// 已有占位名称的记录在空查找表下也应保持稳定
	unresolved := NormalizeAct(models.Act{ActID: 11, RoleID: 42}, map[int64]string{})
	again := NormalizeAct(unresolved, map[int64]string{})
	if unresolved != again {
		t.Errorf("占位名称在重复规范化后应保持不变: %+v != %+v", unresolved, again)
	}
}

// TestListBehaviors 测试规范化后的行为列表
func TestListBehaviors(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewBehaviorService(store.NewStaticProvider(now))

	acts, err := svc.ListBehaviors(context.Background(), 0)
	if err != nil {
		t.Fatalf("获取行为列表失败: %v", err)
	}

	if len(acts) != 8 {
		t.Fatalf("应返回8条行为，实际 %d", len(acts))
	}

	for _, a := range acts {
		if a.RoleName == "" {
			t.Errorf("行为 %d 的角色名应已展开", a.ActID)
		}
		if a.TargetRoleID != nil && a.TargetRoleName == "" {
			t.Errorf("行为 %d 的目标角色名应已展开", a.ActID)
		}
	}
}

// TestListBehaviorsLimit 测试条数限制
func TestListBehaviorsLimit(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewBehaviorService(store.NewStaticProvider(now))

	acts, err := svc.ListBehaviors(context.Background(), 3)
	if err != nil {
		t.Fatalf("获取行为列表失败: %v", err)
	}
	if len(acts) != 3 {
		t.Errorf("限制3条时应返回3条，实际 %d", len(acts))
	}
}

// TestGetBehaviorDetail 测试行为详情聚合
func TestGetBehaviorDetail(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewBehaviorService(store.NewStaticProvider(now))

	// 自主行为应附带叙事详情
	selfDetail, err := svc.GetBehaviorDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("获取自主行为详情失败: %v", err)
	}
	if selfDetail.Detail == nil {
		t.Error("自主行为应附带叙事详情")
	}
	if selfDetail.Dialogs != nil {
		t.Error("自主行为不应附带对话内容")
	}

	// 交互行为应附带按轮次排列的对话
	dialogDetail, err := svc.GetBehaviorDetail(context.Background(), 2)
	if err != nil {
		t.Fatalf("获取交互行为详情失败: %v", err)
	}
	if len(dialogDetail.Dialogs) != 3 {
		t.Errorf("行为2应有3轮对话，实际 %d", len(dialogDetail.Dialogs))
	}
	if dialogDetail.Detail != nil {
		t.Error("交互行为不应附带叙事详情")
	}
}

// TestGetBehaviorDetailNotFound 测试不存在的行为
func TestGetBehaviorDetailNotFound(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewBehaviorService(store.NewStaticProvider(now))

	_, err := svc.GetBehaviorDetail(context.Background(), 9999)
	if err == nil {
		t.Fatal("不存在的行为应返回错误")
	}
	if !apperrors.IsNotFoundError(err) {
		t.Errorf("应返回资源不存在错误，实际 %v", err)
	}
}

// TestFormatActTime 测试时间格式化
func TestFormatActTime(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"2026-03-10T09:30:00Z", "03-10 09:30"},
		{"2026-03-10 09:30:00", "03-10 09:30"},
		{"2026/3/10 09:30", "03-10 09:30"},
		{"不是时间", "不是时间"}, // 解析失败时返回原始字符串
		{"", UnknownTimeLabel},
	}

	for _, c := range cases {
		if got := FormatActTime(c.raw); got != c.expected {
			t.Errorf("FormatActTime(%q) 应为 %q，实际 %q", c.raw, c.expected, got)
		}
	}
}
