// Package tree はツリー管理のドメインロジックを提供する。
package tree

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeizu/internal/model"
	"github.com/hitoshi/kakeizu/internal/repository"
	"github.com/hitoshi/kakeizu/internal/security"
)

// Service はツリー管理のサービス層。
type Service struct {
	treeRepo  repository.TreeRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(treeRepo repository.TreeRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		treeRepo:  treeRepo,
		sanitizer: sanitizer,
	}
}

// Create は新しいツリーを作成する。
// ownerIDはトークン検証済みのユーザーID。nameは空文字列を許容する
// （フィールド自体の欠落はハンドラー層でINVALID_INPUTとして弾く）。
func (s *Service) Create(ctx context.Context, ownerID, name string) (*model.Tree, error) {
	t := &model.Tree{
		ID:        uuid.NewString(),
		Name:      s.sanitizer.Sanitize(name),
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	if err := s.treeRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// ListAll は全ツリーを挿入順で返す。認証不要の公開操作。
// 書き込みがなければ何度呼んでも同一内容・同一順序を返す。
func (s *Service) ListAll(ctx context.Context) ([]*model.Tree, error) {
	return s.treeRepo.ListAll(ctx)
}
