// internal/models/role.go
package models

// Role 表示一个自治角色的静态档案
// 对行为分析管线而言是只读的引用数据
type Role struct {
	RoleID          int64  `json:"role_id"`
	RoleName        string `json:"role_name"`
	RoleCamp        string `json:"role_camp"`
	RoleIdentity    string `json:"role_identity"`
	RolePersonality string `json:"role_personality"`
	RoleFeature     string `json:"role_feature,omitempty"`
	LLMModel        string `json:"llm_model"`
	DailyActLimit   int    `json:"daily_act_limit"`
	IsHistorical    int    `json:"is_historical"`
	Status          string `json:"status"`

	// 存储层附带的动态字段
	UsedQuota      int `json:"used_quota"`
	RemainingQuota int `json:"remaining_quota"`
	TodayActCount  int `json:"today_act_count"`
}

// Memory 角色对另一个角色的记忆注记，可能完全不存在
type Memory struct {
	MemoryID      int64  `json:"memory_id"`
	RoleID        int64  `json:"role_id"`
	ToRoleID      int64  `json:"to_role_id"`
	ToRoleName    string `json:"to_role_name"`
	MemoryContent string `json:"memory_content"`
	CreateTime    string `json:"create_time"`
}
