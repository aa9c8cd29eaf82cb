// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	apperrors "github.com/Corphon/RoleScope/internal/errors"
	"github.com/Corphon/RoleScope/internal/models"
)

// SQLiteStore 基于SQLite的实时数据源
// 行为/角色/详情由外部生成系统写入，本服务只读；WAL模式保证并发读安全
type SQLiteStore struct {
	conn *sql.DB
	Path string
}

// NewSQLiteStore 打开数据库并确保表结构存在
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// WAL模式支持并发读
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("设置WAL模式失败: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("启用外键失败: %w", err)
	}

	s := &SQLiteStore{conn: conn, Path: path}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// initSchema 初始化表结构（幂等）
func (s *SQLiteStore) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS roles (
    role_id          INTEGER PRIMARY KEY,
    role_name        TEXT NOT NULL,
    role_camp        TEXT DEFAULT '',
    role_identity    TEXT DEFAULT '',
    role_personality TEXT DEFAULT '',
    role_feature     TEXT DEFAULT '',
    llm_model        TEXT DEFAULT '',
    daily_act_limit  INTEGER DEFAULT 0,
    is_historical    INTEGER DEFAULT 0,
    status           TEXT DEFAULT 'alive',
    used_quota       INTEGER DEFAULT 0,
    remaining_quota  INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS acts (
    act_id                INTEGER PRIMARY KEY,
    role_id               INTEGER NOT NULL,
    target_role_id        INTEGER,
    act_date              TEXT NOT NULL,
    act_time              TEXT NOT NULL,
    act_type              TEXT NOT NULL,
    act_tag               TEXT DEFAULT '',
    output_type           TEXT DEFAULT '',
    security_check_result TEXT DEFAULT ''
);
CREATE TABLE IF NOT EXISTS self_act_details (
    act_id           INTEGER PRIMARY KEY,
    self_act_content TEXT DEFAULT '',
    output_content   TEXT DEFAULT '',
    llm_model        TEXT DEFAULT ''
);
CREATE TABLE IF NOT EXISTS dialogs (
    dialog_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    act_id          INTEGER NOT NULL,
    speaker_role_id INTEGER NOT NULL,
    speaker_name    TEXT DEFAULT '',
    dialog_content  TEXT DEFAULT '',
    dialog_round    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS memories (
    memory_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    role_id        INTEGER NOT NULL,
    to_role_id     INTEGER,
    to_role_name   TEXT DEFAULT '',
    memory_content TEXT DEFAULT '',
    create_time    TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_acts_role ON acts(role_id);
CREATE INDEX IF NOT EXISTS idx_acts_date ON acts(act_date);
CREATE INDEX IF NOT EXISTS idx_dialogs_act ON dialogs(act_id);
CREATE INDEX IF NOT EXISTS idx_memories_role ON memories(role_id);
`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Conn 返回底层连接，供测试和数据导入使用
func (s *SQLiteStore) Conn() *sql.DB {
	return s.conn
}

// scanAct 从查询结果扫描一条行为记录
func scanAct(scanner interface{ Scan(dest ...any) error }) (models.Act, error) {
	var a models.Act
	var target sql.NullInt64
	err := scanner.Scan(
		&a.ActID, &a.RoleID, &target, &a.ActDate, &a.ActTime,
		&a.ActType, &a.ActTag, &a.OutputType, &a.SecurityResult,
	)
	if target.Valid {
		v := target.Int64
		a.TargetRoleID = &v
	}
	return a, err
}

const actColumns = `act_id, role_id, target_role_id, act_date, act_time,
       act_type, act_tag, output_type, security_check_result`

// ListActs 按行为时间倒序返回行为记录
func (s *SQLiteStore) ListActs(ctx context.Context, limit int) ([]models.Act, error) {
	query := `SELECT ` + actColumns + ` FROM acts ORDER BY act_time DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询行为记录失败", err)
	}
	defer rows.Close()

	var acts []models.Act
	for rows.Next() {
		a, err := scanAct(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("解析行为记录失败", err)
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("遍历行为记录失败", err)
	}
	return acts, nil
}

// GetAct 按ID返回单条行为记录
func (s *SQLiteStore) GetAct(ctx context.Context, actID int64) (*models.Act, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+actColumns+` FROM acts WHERE act_id = ?`, actID)

	a, err := scanAct(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("行为记录不存在: %d", actID), err)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询行为记录失败", err)
	}
	return &a, nil
}

// scanRole 从查询结果扫描一个角色
func scanRole(scanner interface{ Scan(dest ...any) error }) (models.Role, error) {
	var r models.Role
	err := scanner.Scan(
		&r.RoleID, &r.RoleName, &r.RoleCamp, &r.RoleIdentity, &r.RolePersonality,
		&r.RoleFeature, &r.LLMModel, &r.DailyActLimit, &r.IsHistorical, &r.Status,
		&r.UsedQuota, &r.RemainingQuota,
	)
	return r, err
}

const roleColumns = `role_id, role_name, role_camp, role_identity, role_personality,
       role_feature, llm_model, daily_act_limit, is_historical, status,
       used_quota, remaining_quota`

// ListRoles 返回全部角色，按ID升序
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY role_id ASC`)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询角色列表失败", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("解析角色记录失败", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("遍历角色列表失败", err)
	}
	return roles, nil
}

// GetRole 按ID返回单个角色
func (s *SQLiteStore) GetRole(ctx context.Context, roleID int64) (*models.Role, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE role_id = ?`, roleID)

	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("角色不存在: %d", roleID), err)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询角色失败", err)
	}
	return &r, nil
}

// GetActDetail 返回自主行为的叙事详情
func (s *SQLiteStore) GetActDetail(ctx context.Context, actID int64) (*models.SelfActDetail, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT act_id, self_act_content, output_content, llm_model
		FROM self_act_details WHERE act_id = ?`, actID)

	var d models.SelfActDetail
	err := row.Scan(&d.ActID, &d.SelfActContent, &d.OutputContent, &d.LLMModel)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("行为详情不存在: %d", actID), err)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询行为详情失败", err)
	}
	return &d, nil
}

// ListDialogTurns 按轮次升序返回交互行为的对话内容
func (s *SQLiteStore) ListDialogTurns(ctx context.Context, actID int64) ([]models.DialogTurn, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT act_id, speaker_role_id, speaker_name, dialog_content, dialog_round
		FROM dialogs WHERE act_id = ? ORDER BY dialog_round ASC`, actID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询对话内容失败", err)
	}
	defer rows.Close()

	var turns []models.DialogTurn
	for rows.Next() {
		var t models.DialogTurn
		if err := rows.Scan(&t.ActID, &t.SpeakerRoleID, &t.SpeakerName,
			&t.DialogContent, &t.DialogRound); err != nil {
			return nil, apperrors.NewStoreUnavailableError("解析对话内容失败", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("遍历对话内容失败", err)
	}
	return turns, nil
}

// ListMemories 返回指定角色的记忆注记
func (s *SQLiteStore) ListMemories(ctx context.Context, roleID int64) ([]models.Memory, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT memory_id, role_id, to_role_id, to_role_name, memory_content, create_time
		FROM memories WHERE role_id = ? ORDER BY create_time DESC`, roleID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("查询记忆失败", err)
	}
	defer rows.Close()

	var memories []models.Memory
	for rows.Next() {
		var m models.Memory
		var toRole sql.NullInt64
		if err := rows.Scan(&m.MemoryID, &m.RoleID, &toRole, &m.ToRoleName,
			&m.MemoryContent, &m.CreateTime); err != nil {
			return nil, apperrors.NewStoreUnavailableError("解析记忆失败", err)
		}
		if toRole.Valid {
			m.ToRoleID = toRole.Int64
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("遍历记忆失败", err)
	}
	return memories, nil
}

// CountActs 按过滤条件统计行为数量
func (s *SQLiteStore) CountActs(ctx context.Context, filter *ActFilter) (int, error) {
	query := `SELECT COUNT(*) FROM acts`
	var conds []string
	var args []any

	if filter != nil {
		if filter.RoleID != nil {
			conds = append(conds, `role_id = ?`)
			args = append(args, *filter.RoleID)
		}
		if filter.ActDate != "" {
			conds = append(conds, `act_date = ?`)
			args = append(args, filter.ActDate)
		}
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	var count int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStoreUnavailableError("统计行为数量失败", err)
	}
	return count, nil
}

// CountRoles 统计角色总数
func (s *SQLiteStore) CountRoles(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return 0, apperrors.NewStoreUnavailableError("统计角色数量失败", err)
	}
	return count, nil
}

// CountMemories 统计记忆总数
func (s *SQLiteStore) CountMemories(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&count); err != nil {
		return 0, apperrors.NewStoreUnavailableError("统计记忆数量失败", err)
	}
	return count, nil
}
