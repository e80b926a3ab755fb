package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/password"
	"github.com/hitoshi/calcstash/internal/repository"
)

// DemoUser は起動時シーディング用のデモアカウント定義。
type DemoUser struct {
	Username string
	Email    string
	Password string
}

// DefaultDemoUsers はデモ・動作確認用の既定アカウント。
// パスワードが公知であるため、本番環境では絶対にシーディングしないこと。
// SEED_DEMO_USERSフラグ（デフォルト無効）でのみ有効化される。
var DefaultDemoUsers = []DemoUser{
	{Username: "admin", Email: "admin@logistics.com", Password: "admin123"},
	{Username: "user1", Email: "user1@logistics.com", Password: "user123"},
}

// SeedDemoUsers はデモアカウントを冪等に作成する。
// すでに存在するアカウント（CONFLICT）はエラーにせずスキップする。
func SeedDemoUsers(ctx context.Context, userRepo repository.UserRepository, hasher password.Hasher, users []DemoUser) error {
	slog.Warn("seeding demo accounts with well-known passwords; this is for demo use only and must stay disabled in production")

	for _, u := range users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash demo password for %s: %w", u.Username, err)
		}

		id, err := userRepo.Create(ctx, &model.User{
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: hash,
		})
		if err != nil {
			var apiErr *model.APIError
			if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeConflict {
				continue
			}
			return fmt.Errorf("failed to seed demo user %s: %w", u.Username, err)
		}

		slog.Info("demo user created",
			slog.Int64("user_id", id),
			slog.String("username", u.Username),
		)
	}

	return nil
}
