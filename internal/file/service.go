// Package file はファイル取得のドメインロジックを提供する。
package file

import (
	"context"
	"io"

	"github.com/hitoshi/kakeizu/internal/blob"
	"github.com/hitoshi/kakeizu/internal/model"
	"github.com/hitoshi/kakeizu/internal/repository"
)

// Service はファイル取得のサービス層。
type Service struct {
	fileRepo  repository.FileRepository
	blobStore blob.Store
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(fileRepo repository.FileRepository, blobStore blob.Store) *Service {
	return &Service{
		fileRepo:  fileRepo,
		blobStore: blobStore,
	}
}

// Get は(fileID, memberID)の組でファイルを取得し、内容のストリームを返す。
// ファイルIDが実在しても指定メンバーのものでなければFILE_NOT_FOUNDを返す
// （ID推測によるメンバー間のファイル漏えいをメタデータ層で防ぐ）。
// 取得は公開操作でありトークンは不要。
// 読み取り専用のため何度呼んでも副作用はない。
func (s *Service) Get(ctx context.Context, fileID, memberID string) (*model.File, io.ReadCloser, error) {
	f, err := s.fileRepo.FindByIDAndMember(ctx, fileID, memberID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, model.NewFileNotFoundError()
	}

	rc, err := s.blobStore.Open(ctx, f.StorageKey)
	if err != nil {
		return nil, nil, model.NewStorageFailureError()
	}

	return f, rc, nil
}
