// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// UsernameとEmailはそれぞれ全ユーザー間で一意。
// PasswordHashは一方向ハッシュであり、平文パスワードは保持しない。
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserSession はユーザーが保存した名前付き計算セッションを表す。
// (UserID, Name) の組は一意であり、同名での再保存は上書きになる。
// DataはシリアライズされたJSONテキストとして永続化される。
type UserSession struct {
	ID        int64
	UserID    int64
	Name      string
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserSessionSummary は一覧表示用のセッション概要。ペイロード本体は含まない。
type UserSessionSummary struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
