package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hitoshi/calcstash/internal/model"
)

// psq はドル記号プレースホルダを使用するPostgreSQL用ステートメントビルダ。
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresSessionDataRepo はPostgreSQLを使用したセッションデータリポジトリ。
type PostgresSessionDataRepo struct {
	db *sql.DB
}

// NewPostgresSessionDataRepo はPostgresSessionDataRepoを生成する。
func NewPostgresSessionDataRepo(db *sql.DB) *PostgresSessionDataRepo {
	return &PostgresSessionDataRepo{db: db}
}

// Upsert は(userID, name)のレコードを原子的に挿入または上書きする。
// 読み取り後書き込みの2段階ではなく、一意性制約に対するON CONFLICTで
// 1文で完結させるため、同時実行で重複レコードが生まれることはない。
// xmax = 0 は挿入された行でのみ真となるため、新規作成かどうかの判定に使う。
func (r *PostgresSessionDataRepo) Upsert(ctx context.Context, userID int64, name, data string) (*UpsertResult, error) {
	result := &UpsertResult{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO user_sessions (user_id, session_name, session_data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, session_name)
		 DO UPDATE SET session_data = EXCLUDED.session_data, updated_at = now()
		 RETURNING id, (xmax = 0) AS inserted`,
		userID, name, data,
	).Scan(&result.ID, &result.Created)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}

	return result, nil
}

// ListByUserID はユーザーのセッション概要一覧をupdated_at降順で返す。
func (r *PostgresSessionDataRepo) ListByUserID(ctx context.Context, userID int64) ([]model.UserSessionSummary, error) {
	query, args, err := psq.
		Select("id", "session_name", "created_at", "updated_at").
		From("user_sessions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []model.UserSessionSummary{}
	for rows.Next() {
		var s model.UserSessionSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session summaries: %w", err)
	}

	return summaries, nil
}

// FindByID は指定ユーザーが所有する指定IDのセッションを取得する。
// 未知のIDと他ユーザー所有のIDはどちらもnilになる。
func (r *PostgresSessionDataRepo) FindByID(ctx context.Context, userID, id int64) (*model.UserSession, error) {
	session := &model.UserSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_name, session_data, created_at, updated_at
		 FROM user_sessions
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&session.ID, &session.UserID, &session.Name, &session.Data, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// Delete は指定ユーザーが所有する指定IDのセッションを削除する。
// 削除対象が存在しない場合は型付きのSESSION_NOT_FOUNDエラーを返す。
func (r *PostgresSessionDataRepo) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewSessionNotFoundError()
	}

	return nil
}

// compile-time interface check
var _ SessionDataRepository = (*PostgresSessionDataRepo)(nil)
