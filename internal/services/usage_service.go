// internal/services/usage_service.go
package services

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Corphon/RoleScope/internal/utils"
)

// APIUsage 表示接口访问统计
type APIUsage struct {
	TodayRequests int            `json:"today_requests"`
	TotalRequests int            `json:"total_requests"`
	DailyStats    map[string]int `json:"daily_stats"`    // 按天的请求数
	EndpointStats map[string]int `json:"endpoint_stats"` // 按接口路径的累计请求数
	LastUpdated   time.Time      `json:"last_updated"`
}

// UsageService 提供接口访问统计功能
// 计数在内存中累积，批量落盘，避免每次请求都写文件
type UsageService struct {
	BasePath    string     // 统计数据存储路径
	usageFile   string     // 统计文件名
	mutex       sync.Mutex // 用于数据访问的互斥锁
	cachedUsage *APIUsage  // 缓存的统计数据

	// 缓存字段
	lastCheckDate string
	lastCheckTime time.Time

	// 批量保存控制
	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// ------------------------------------
// NewUsageService 创建访问统计服务实例
func NewUsageService(basePath string) *UsageService {
	if basePath == "" {
		basePath = "data/usage"
	}

	// 确保统计数据目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		utils.GetLogger().Warnf("创建统计目录失败: %v", err)
	}

	service := &UsageService{
		BasePath:     basePath,
		usageFile:    filepath.Join(basePath, "api_usage.json"),
		saveInterval: 30 * time.Second,
		stopCh:       make(chan struct{}),
	}

	service.startPeriodicSave()

	return service
}

// initUsageUnlocked 初始化统计数据（无锁版本）
func (s *UsageService) initUsageUnlocked() {
	// 尝试加载现有数据
	if loaded, err := s.loadUsageFromFile(); err == nil {
		s.rollOverIfNewDay(loaded)
		s.cachedUsage = loaded
		return
	}

	// 加载失败或文件不存在，创建新的统计数据
	s.cachedUsage = &APIUsage{
		DailyStats:    make(map[string]int),
		EndpointStats: make(map[string]int),
		LastUpdated:   time.Now(),
	}

	if err := s.saveUsage(s.cachedUsage); err != nil {
		utils.GetLogger().Warnf("保存初始统计数据失败: %v", err)
	}
}

func (s *UsageService) loadUsageFromFile() (*APIUsage, error) {
	if _, err := os.Stat(s.usageFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("统计文件不存在")
	}

	data, err := os.ReadFile(s.usageFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}

	var usage APIUsage
	if err := json.Unmarshal(data, &usage); err != nil {
		return nil, fmt.Errorf("failed to parse usage data: %w", err)
	}

	// 确保映射已初始化
	if usage.DailyStats == nil {
		usage.DailyStats = make(map[string]int)
	}
	if usage.EndpointStats == nil {
		usage.EndpointStats = make(map[string]int)
	}

	return &usage, nil
}

// rollOverIfNewDay 跨天时重置今日计数
func (s *UsageService) rollOverIfNewDay(usage *APIUsage) {
	now := time.Now()
	today := now.Format("2006-01-02")
	lastDate := usage.LastUpdated.Format("2006-01-02")

	if today != lastDate {
		usage.TodayRequests = 0
		usage.LastUpdated = now
		if err := s.saveUsage(usage); err != nil {
			utils.GetLogger().Warnf("跨天重置统计失败: %v", err)
		}
	}
}

// saveUsage 保存统计数据到文件
func (s *UsageService) saveUsage(usage *APIUsage) error {
	data, err := json.MarshalIndent(usage, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize usage: %w", err)
	}

	// 使用临时文件确保原子性写入
	tempFile := s.usageFile + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp usage file: %w", err)
	}

	if err := os.Rename(tempFile, s.usageFile); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace usage file: %w", err)
	}

	return nil
}

// GetUsage 获取接口访问统计
func (s *UsageService) GetUsage() *APIUsage {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedUsage == nil {
		s.initUsageUnlocked()
	}

	if s.needsPeriodUpdate() {
		s.rollOverIfNewDay(s.cachedUsage)
	}

	// 返回深度副本
	return s.createUsageCopy()
}

// needsPeriodUpdate 带节流的跨天检查，10分钟内不重复比较
func (s *UsageService) needsPeriodUpdate() bool {
	now := time.Now()

	if now.Sub(s.lastCheckTime) < 10*time.Minute {
		return false
	}

	s.lastCheckTime = now
	currentDate := now.Format("2006-01-02")

	needsUpdate := currentDate != s.lastCheckDate
	if needsUpdate {
		s.lastCheckDate = currentDate
	}

	return needsUpdate
}

// createUsageCopy 创建统计数据的深度副本
func (s *UsageService) createUsageCopy() *APIUsage {
	if s.cachedUsage == nil {
		return &APIUsage{
			DailyStats:    make(map[string]int),
			EndpointStats: make(map[string]int),
			LastUpdated:   time.Now(),
		}
	}

	return &APIUsage{
		TodayRequests: s.cachedUsage.TodayRequests,
		TotalRequests: s.cachedUsage.TotalRequests,
		DailyStats:    copyIntMap(s.cachedUsage.DailyStats),
		EndpointStats: copyIntMap(s.cachedUsage.EndpointStats),
		LastUpdated:   s.cachedUsage.LastUpdated,
	}
}

func copyIntMap(original map[string]int) map[string]int {
	if original == nil {
		return make(map[string]int)
	}

	c := make(map[string]int, len(original))
	maps.Copy(c, original)
	return c
}

// RecordRequest 记录一次接口请求
func (s *UsageService) RecordRequest(endpoint string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedUsage == nil {
		s.initUsageUnlocked()
	}

	now := time.Now()
	today := now.Format("2006-01-02")

	s.cachedUsage.TodayRequests++
	s.cachedUsage.TotalRequests++
	s.cachedUsage.DailyStats[today]++
	if endpoint != "" {
		s.cachedUsage.EndpointStats[endpoint]++
	}
	s.cachedUsage.LastUpdated = now

	// 标记为需要保存，但不立即保存
	s.isDirty = true

	if now.Sub(s.lastSaveTime) > s.saveInterval {
		return s.saveUsageImmediate()
	}

	return nil
}

// saveUsageImmediate 立即保存（调用方须持锁）
func (s *UsageService) saveUsageImmediate() error {
	if !s.isDirty {
		return nil
	}

	err := s.saveUsage(s.cachedUsage)
	if err == nil {
		s.isDirty = false
		s.lastSaveTime = time.Now()
	}
	return err
}

// startPeriodicSave 定时保存机制
func (s *UsageService) startPeriodicSave() {
	go func() {
		ticker := time.NewTicker(s.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.mutex.Lock()
				if s.isDirty {
					if err := s.saveUsageImmediate(); err != nil {
						utils.GetLogger().Warnf("定时保存统计数据失败: %v", err)
					}
				}
				s.mutex.Unlock()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Close 停止定时保存并把未落盘的数据写入文件
func (s *UsageService) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopCh)

		s.mutex.Lock()
		defer s.mutex.Unlock()
		err = s.saveUsageImmediate()
	})
	return err
}
