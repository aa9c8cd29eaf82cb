// internal/services/provider_mock_test.go
package services

import (
	"context"

	apperrors "github.com/Corphon/RoleScope/internal/errors"
	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/store"
)

// failingProvider 所有方法都返回存储不可用错误的数据源
type failingProvider struct{}

func (p *failingProvider) storeErr() error {
	return apperrors.NewStoreUnavailableError("数据库连接失败", nil)
}

func (p *failingProvider) ListActs(context.Context, int) ([]models.Act, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) GetAct(context.Context, int64) (*models.Act, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) ListRoles(context.Context) ([]models.Role, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) GetRole(context.Context, int64) (*models.Role, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) GetActDetail(context.Context, int64) (*models.SelfActDetail, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) ListDialogTurns(context.Context, int64) ([]models.DialogTurn, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) ListMemories(context.Context, int64) ([]models.Memory, error) {
	return nil, p.storeErr()
}

func (p *failingProvider) CountActs(context.Context, *store.ActFilter) (int, error) {
	return 0, p.storeErr()
}

func (p *failingProvider) CountRoles(context.Context) (int, error) {
	return 0, p.storeErr()
}

func (p *failingProvider) CountMemories(context.Context) (int, error) {
	return 0, p.storeErr()
}

// flakyActsProvider 包装静态数据源，让行为列表查询失败
// 用于验证角色可查但行为不可查时的整体降级
type flakyActsProvider struct {
	store.DataProvider
}

func (p *flakyActsProvider) ListActs(context.Context, int) ([]models.Act, error) {
	return nil, apperrors.NewStoreUnavailableError("行为列表查询失败", nil)
}

// flakyDetailProvider 包装静态数据源，让指定行为的详情读取失败
// 用于验证单条详情失败只降级该条内容
type flakyDetailProvider struct {
	store.DataProvider
	failActID int64
}

func (p *flakyDetailProvider) GetActDetail(ctx context.Context, actID int64) (*models.SelfActDetail, error) {
	if actID == p.failActID {
		return nil, apperrors.NewStoreUnavailableError("详情读取失败", nil)
	}
	return p.DataProvider.GetActDetail(ctx, actID)
}
