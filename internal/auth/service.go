// Package auth はユーザー登録・ログイン・トークン発行を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/calcstash/internal/model"
	"github.com/hitoshi/calcstash/internal/password"
	"github.com/hitoshi/calcstash/internal/repository"
	"github.com/hitoshi/calcstash/internal/token"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL time.Duration // トークンの有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   token.Store
	hasher   password.Hasher
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens token.Store,
	hasher password.Hasher,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		config:   config,
	}
}

// Register は新規ユーザーを登録し、ログイン済みトークンを発行する。
// username/email/passwordはすべて必須。
// username/emailの重複はリポジトリからの型付きCONFLICTエラーをそのまま返す。
func (s *Service) Register(ctx context.Context, username, email, plaintext string) (*token.Record, error) {
	if username == "" || email == "" || plaintext == "" {
		return nil, model.NewValidationError("All fields are required")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.Int64("user_id", userID),
		slog.String("username", username),
	)

	return s.issueToken(ctx, userID, username)
}

// Login はユーザーを認証し、ログイン済みトークンを発行する。
// ユーザーが存在しない場合とパスワードが一致しない場合は
// 同一のINVALID_CREDENTIALSエラーを返し、区別できないようにする。
func (s *Service) Login(ctx context.Context, username, plaintext string) (*token.Record, error) {
	if username == "" || plaintext == "" {
		return nil, model.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(user.PasswordHash, plaintext) {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(ctx, user.ID, user.Username)
}

// Logout はトークンを破棄する。すでに破棄済みでもエラーにならない（冪等）。
func (s *Service) Logout(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}

	if err := s.tokens.Delete(ctx, tok); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// CurrentUser はトークンから現在の認証コンテキストを取得する。
// トークンが欠落・未知・期限切れの場合はUNAUTHORIZEDエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, tok string) (*token.Record, error) {
	if tok == "" {
		return nil, model.NewUnauthorizedError()
	}

	rec, err := s.tokens.Find(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if rec == nil {
		return nil, model.NewUnauthorizedError()
	}

	return rec, nil
}

// issueToken は新しいトークンを生成して保存する。
func (s *Service) issueToken(ctx context.Context, userID int64, username string) (*token.Record, error) {
	tok, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	rec := &token.Record{
		Token:     tok,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}

	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	return rec, nil
}

// generateToken は暗号的に安全な不透明トークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
