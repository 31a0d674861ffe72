package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeizu/internal/model"
	"github.com/hitoshi/kakeizu/internal/repository"
)

// Service はアカウント作成とログインのサービス層。
// サインアップ成功時も即座にトークンを返し、追加のログインを不要にする。
type Service struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher *PasswordHasher, tokens *TokenService) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Signup は新規アカウントを作成し、セッショントークンを発行する。
// メールアドレスの重複はDUPLICATE_EMAILエラーになる。
func (s *Service) Signup(ctx context.Context, email, rawPassword string) (*model.User, string, error) {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, "", model.NewInvalidInputError("メールアドレスの形式が正しくありません")
	}
	if rawPassword == "" {
		return nil, "", model.NewInvalidInputError("パスワードが空です")
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("パスワード処理に失敗しました: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	return user, token, nil
}

// Login は認証情報を照合し、セッショントークンを発行する。
// メールアドレス不明とパスワード不一致は外部から区別できない
// （同一のINVALID_CREDENTIALSを返し、どちらの経路でもbcrypt照合を1回実行する）。
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if user == nil {
		s.hasher.VerifyDummy(rawPassword)
		return "", model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(user.PasswordHash, rawPassword) {
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	return token, nil
}

// GetCurrentUser は検証済みユーザーIDからユーザー情報を取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}
	return user, nil
}
