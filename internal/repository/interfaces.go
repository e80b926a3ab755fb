// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/calcstash/internal/model"
)

// UserRepository はユーザー資格情報の永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを返す。
	// usernameまたはemailが既存ユーザーと重複する場合は
	// 型付きの model.APIError (CONFLICT) を返す。
	// ドライバのエラーコード（unique_violation）で判定し、
	// エラーメッセージ文字列の解析は行わない。
	Create(ctx context.Context, user *model.User) (int64, error)

	// FindByUsername は指定usernameのユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// UpsertResult はUpsertの結果を表す。
type UpsertResult struct {
	ID      int64
	Created bool // trueなら新規作成、falseなら既存レコードの上書き
}

// SessionDataRepository は名前付きセッションデータの永続化インターフェース。
// すべての操作はuserIDでスコープされ、他ユーザーのレコードには到達できない。
type SessionDataRepository interface {
	// Upsert は(userID, name)のレコードを原子的に挿入または上書きする。
	// 既存レコードの場合はIDとcreated_atを維持したままペイロードと
	// updated_atだけを更新する。一意性制約とON CONFLICTにより、
	// 同時実行されても(userID, name)のレコードは常に1件に保たれる。
	Upsert(ctx context.Context, userID int64, name, data string) (*UpsertResult, error)

	// ListByUserID はユーザーのセッション概要一覧をupdated_at降順で返す。
	// ペイロード本体は含まない。
	ListByUserID(ctx context.Context, userID int64) ([]model.UserSessionSummary, error)

	// FindByID は指定ユーザーが所有する指定IDのセッションを取得する。
	// IDが存在しない場合も他ユーザー所有の場合も同じくnilを返す。
	FindByID(ctx context.Context, userID, id int64) (*model.UserSession, error)

	// Delete は指定ユーザーが所有する指定IDのセッションを削除する。
	// 削除対象が存在しない場合（未知のIDまたは他ユーザー所有）は
	// 型付きの model.APIError (SESSION_NOT_FOUND) を返す。
	Delete(ctx context.Context, userID, id int64) error
}
