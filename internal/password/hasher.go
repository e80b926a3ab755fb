// Package password はパスワードの一方向ハッシュ化と検証を提供する。
// ハッシュアルゴリズムの詳細は呼び出し側から隠蔽し、
// 平文パスワードがこのパッケージの外へ出ることはない。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードハッシュの生成と検証のインターフェース。
type Hasher interface {
	// Hash は平文パスワードから一方向ハッシュを生成する。
	Hash(plaintext string) (string, error)
	// Verify はハッシュと平文パスワードの一致を検証する。
	Verify(hash, plaintext string) bool
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが0以下の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードからbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はbcryptハッシュと平文パスワードの一致を検証する。
func (h *BcryptHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
