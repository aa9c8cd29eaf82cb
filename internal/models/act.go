// internal/models/act.go
package models

// 行为类型常量
const (
	ActTypeSelf   = "self_act"   // 自主行为
	ActTypeDialog = "dialog_act" // 交互行为
)

// Act 表示角色的一条行为记录
// 由外部行为生成系统写入，本服务只读，不做任何修改
type Act struct {
	ActID          int64  `json:"act_id"`
	RoleID         int64  `json:"role_id"`
	TargetRoleID   *int64 `json:"target_role_id"`           // 仅交互行为存在
	ActDate        string `json:"act_date"`                 // YYYY-MM-DD
	ActTime        string `json:"act_time"`                 // 原始时间戳字符串
	ActType        string `json:"act_type"`                 // self_act / dialog_act
	ActTag         string `json:"act_tag"`                  // 行为标签
	OutputType     string `json:"output_type"`              // 产出类型
	SecurityResult string `json:"security_check_result,omitempty"`

	// 规范化阶段展开的显示字段
	RoleName       string `json:"role_name,omitempty"`
	TargetRoleName string `json:"target_role_name,omitempty"`
}

// IsDialog 判断是否为交互行为
func (a *Act) IsDialog() bool {
	return a.ActType == ActTypeDialog
}

// SelfActDetail 自主行为的叙事详情，与自主行为一对一
type SelfActDetail struct {
	ActID          int64  `json:"act_id"`
	SelfActContent string `json:"self_act_content"`
	OutputContent  string `json:"output_content"`
	LLMModel       string `json:"llm_model"`
}

// DialogTurn 交互行为中的一轮发言
// 按 DialogRound 升序排列，消费方需容忍轮次编号存在空洞
type DialogTurn struct {
	ActID         int64  `json:"act_id"`
	SpeakerRoleID int64  `json:"speaker_role_id"`
	SpeakerName   string `json:"speaker_name"`
	DialogContent string `json:"dialog_content"`
	DialogRound   int    `json:"dialog_round"`
}

// ActDetail 行为详情聚合
// 自主行为填充 Detail，交互行为填充 Dialogs，二者互斥
type ActDetail struct {
	Act     Act            `json:"act"`
	Detail  *SelfActDetail `json:"detail,omitempty"`
	Dialogs []DialogTurn   `json:"dialogs,omitempty"`
}
