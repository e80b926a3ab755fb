// Package token はログイントークンとユーザー識別情報の対応を管理する。
// トークンはクライアントにはCookieとして渡される不透明な値であり、
// サーバー側でのみ識別情報に解決される。
package token

import (
	"context"
	"time"
)

// Record はトークンに紐付くサーバー側の認証コンテキストを表す。
// リレーショナルストアには永続化されない一時データ。
type Record struct {
	Token     string
	UserID    int64
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired はレコードが有効期限切れかどうかを返す。
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store はトークンストアのインターフェース。
// 実装を差し替えることで、単一プロセスのインメモリ構成から
// 複数インスタンス構成（分散キャッシュ）への移行を可能にする。
type Store interface {
	// Create はレコードを保存する。
	Create(ctx context.Context, rec *Record) error
	// Find は指定トークンのレコードを取得する。
	// 存在しない場合と期限切れの場合はどちらもnilを返す。
	Find(ctx context.Context, token string) (*Record, error)
	// Delete は指定トークンのレコードを削除する。
	// すでに存在しない場合もエラーにならない（冪等）。
	Delete(ctx context.Context, token string) error
}
