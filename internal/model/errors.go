// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ストレージ層・サービス層が型付きエラーとして生成し、
// リクエスト境界でHTTPステータスコードへ変換される。
// ドライバのエラーメッセージ文字列を解析して分類することはしない。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアントに返すメッセージ
	Category string // カテゴリ: auth, validation, session, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeCorruptData        = "CORRUPT_DATA"
	ErrCodeStorage            = "STORAGE_ERROR"
)

// NewValidationError は必須フィールド欠落などの入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
	}
}

// NewConflictError はusernameまたはemailの重複エラーを生成する。
// どちらが重複したかは区別せず、同一メッセージを返す。
func NewConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "Username or email already exists",
		Category: "validation",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない均一なメッセージを返す
// （ユーザー名列挙攻撃への対策）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
	}
}

// NewUnauthorizedError はトークン欠落・期限切れエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
// IDが存在しない場合と他ユーザー所有の場合を区別しない
// （他ユーザーのリソース存在を漏らさないため）。
func NewSessionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  "Session not found",
		Category: "session",
	}
}

// NewCorruptDataError は保存済みペイロードがJSONとして解析できない場合のエラーを生成する。
// このAPI経由でのみ書き込まれている限り通常は発生しない。
func NewCorruptDataError() *APIError {
	return &APIError{
		Code:     ErrCodeCorruptData,
		Message:  "Invalid session data",
		Category: "system",
	}
}

// NewStorageError は永続化層の一般的な失敗エラーを生成する。
// 内部の詳細はログにのみ記録し、クライアントには汎用メッセージを返す。
func NewStorageError() *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  "Database error",
		Category: "system",
	}
}
