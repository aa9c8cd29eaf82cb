// internal/store/provider.go
package store

import (
	"context"

	"github.com/Corphon/RoleScope/internal/models"
)

// ActFilter 行为计数过滤条件，零值表示不过滤
type ActFilter struct {
	RoleID  *int64
	ActDate string // YYYY-MM-DD 精确匹配
}

// DataProvider 数据提供方能力接口
// 两个实现：SQLiteStore（实时数据）与 StaticProvider（静态备用数据），
// 由配置选择，调用方不感知差异
type DataProvider interface {
	// ListActs 按行为时间倒序返回行为记录，limit<=0表示不限制
	ListActs(ctx context.Context, limit int) ([]models.Act, error)

	// GetAct 按ID返回单条行为记录，不存在时返回 not_found 错误
	GetAct(ctx context.Context, actID int64) (*models.Act, error)

	// ListRoles 返回全部角色
	ListRoles(ctx context.Context) ([]models.Role, error)

	// GetRole 按ID返回单个角色，不存在时返回 not_found 错误
	GetRole(ctx context.Context, roleID int64) (*models.Role, error)

	// GetActDetail 返回自主行为的叙事详情
	GetActDetail(ctx context.Context, actID int64) (*models.SelfActDetail, error)

	// ListDialogTurns 按轮次升序返回交互行为的对话内容
	ListDialogTurns(ctx context.Context, actID int64) ([]models.DialogTurn, error)

	// ListMemories 返回指定角色的记忆注记，可能为空
	ListMemories(ctx context.Context, roleID int64) ([]models.Memory, error)

	// CountActs 按过滤条件统计行为数量
	CountActs(ctx context.Context, filter *ActFilter) (int, error)

	// CountRoles 统计角色总数
	CountRoles(ctx context.Context) (int, error)

	// CountMemories 统计记忆总数
	CountMemories(ctx context.Context) (int, error)
}
