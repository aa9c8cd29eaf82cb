// internal/services/usage_service_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"
)

// TestRecordRequest 测试请求计数
func TestRecordRequest(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "usage_test_*")
	if err != nil {
		t.Fatalf("创建临时目录失败: %v", err)
	}
	defer os.RemoveAll(tempDir)

	svc := NewUsageService(tempDir)
	defer svc.Close()

	if err := svc.RecordRequest("/api/stats"); err != nil {
		t.Fatalf("记录请求失败: %v", err)
	}
	if err := svc.RecordRequest("/api/stats"); err != nil {
		t.Fatalf("记录请求失败: %v", err)
	}
	if err := svc.RecordRequest("/api/roles"); err != nil {
		t.Fatalf("记录请求失败: %v", err)
	}

	usage := svc.GetUsage()

	if usage.TodayRequests != 3 {
		t.Errorf("今日请求数应为3，实际 %d", usage.TodayRequests)
	}
	if usage.TotalRequests != 3 {
		t.Errorf("累计请求数应为3，实际 %d", usage.TotalRequests)
	}
	if usage.EndpointStats["/api/stats"] != 2 {
		t.Errorf("/api/stats 的计数应为2，实际 %d", usage.EndpointStats["/api/stats"])
	}
}

// TestUsagePersistence 测试统计数据落盘后可恢复
func TestUsagePersistence(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "usage_test_*")
	if err != nil {
		t.Fatalf("创建临时目录失败: %v", err)
	}
	defer os.RemoveAll(tempDir)

	svc := NewUsageService(tempDir)
	svc.RecordRequest("/api/stats")
	if err := svc.Close(); err != nil {
		t.Fatalf("关闭统计服务失败: %v", err)
	}

	// 统计文件应已写入
	if _, err := os.Stat(filepath.Join(tempDir, "api_usage.json")); os.IsNotExist(err) {
		t.Fatal("统计文件应已创建")
	}

	// 新实例应恢复已保存的计数
	restored := NewUsageService(tempDir)
	defer restored.Close()

	usage := restored.GetUsage()
	if usage.TotalRequests != 1 {
		t.Errorf("恢复后的累计请求数应为1，实际 %d", usage.TotalRequests)
	}
}

// TestGetUsageReturnsCopy 测试返回的是副本
func TestGetUsageReturnsCopy(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "usage_test_*")
	if err != nil {
		t.Fatalf("创建临时目录失败: %v", err)
	}
	defer os.RemoveAll(tempDir)

	svc := NewUsageService(tempDir)
	defer svc.Close()

	svc.RecordRequest("/api/stats")

	first := svc.GetUsage()
	first.EndpointStats["/api/stats"] = 999

	second := svc.GetUsage()
	if second.EndpointStats["/api/stats"] != 1 {
		t.Error("修改返回值不应影响内部状态")
	}
}
