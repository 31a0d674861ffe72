// Package member はメンバー管理のドメインロジックを提供する。
package member

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeizu/internal/blob"
	"github.com/hitoshi/kakeizu/internal/model"
	"github.com/hitoshi/kakeizu/internal/repository"
	"github.com/hitoshi/kakeizu/internal/security"
)

// WritePolicy はツリーへのメンバー追加を誰に許すかのポリシー。
type WritePolicy string

const (
	// WritePolicyOpen は認証済みユーザーなら誰でも任意のツリーに
	// メンバーを追加できる。
	WritePolicyOpen WritePolicy = "open"
	// WritePolicyOwner はツリーの所有者のみがメンバーを追加できる。
	WritePolicyOwner WritePolicy = "owner"
)

// CreateParams はメンバー作成の入力。
type CreateParams struct {
	TreeID       string
	Name         string
	Birthday     string
	PlaceOfBirth string
	Description  string

	// Upload はリクエストに添付ファイルが含まれる場合のみ非nil。
	Upload *Upload
}

// Upload はメンバー作成に添付されたファイル。
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateResult はメンバー作成の結果。
// メンバー行のコミット後にファイル添付が失敗した場合でもメンバー作成
// 自体は成功として返し、FileStatusで添付の結末を呼び出し側に可視化する。
type CreateResult struct {
	Member     *model.Member
	File       *model.File
	FileStatus model.FileStatus
}

// Service はメンバー管理のサービス層。
type Service struct {
	memberRepo repository.MemberRepository
	treeRepo   repository.TreeRepository
	fileRepo   repository.FileRepository
	blobStore  blob.Store
	sanitizer  security.ContentSanitizerService
	policy     WritePolicy
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	memberRepo repository.MemberRepository,
	treeRepo repository.TreeRepository,
	fileRepo repository.FileRepository,
	blobStore blob.Store,
	sanitizer security.ContentSanitizerService,
	policy WritePolicy,
) *Service {
	if policy == "" {
		policy = WritePolicyOpen
	}
	return &Service{
		memberRepo: memberRepo,
		treeRepo:   treeRepo,
		fileRepo:   fileRepo,
		blobStore:  blobStore,
		sanitizer:  sanitizer,
		policy:     policy,
	}
}

// Create は新しいメンバーを作成し、添付ファイルがあれば保存する。
//
// 処理順序は厳密に逐次:
//  1. ツリーの実在確認（read-before-write。孤児メンバーの無言作成を防ぐ）
//  2. メンバー行のコミット
//  3. ブロブ保存 → ファイルメタデータのコミット
//
// 2の後に3が失敗してもメンバー作成は成功として返す
// （FileStatus: failed）。ロールバックはしない。
func (s *Service) Create(ctx context.Context, callerID string, params CreateParams) (*CreateResult, error) {
	if params.TreeID == "" {
		return nil, model.NewInvalidInputError("treeIdが指定されていません")
	}
	if s.sanitizer.Sanitize(params.Name) == "" {
		return nil, model.NewInvalidInputError("nameが指定されていません")
	}

	t, err := s.treeRepo.FindByID(ctx, params.TreeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, model.NewTreeNotFoundError(params.TreeID)
	}
	if s.policy == WritePolicyOwner && t.OwnerID != callerID {
		return nil, model.NewForbiddenError()
	}

	m := &model.Member{
		ID:           uuid.NewString(),
		TreeID:       params.TreeID,
		Name:         s.sanitizer.Sanitize(params.Name),
		Birthday:     s.sanitizer.Sanitize(params.Birthday),
		PlaceOfBirth: s.sanitizer.Sanitize(params.PlaceOfBirth),
		Description:  s.sanitizer.Sanitize(params.Description),
		CreatedAt:    time.Now(),
	}

	if err := s.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	result := &CreateResult{Member: m, FileStatus: model.FileStatusNone}

	if params.Upload != nil {
		file, err := s.attachFile(ctx, m.ID, params.Upload)
		if err != nil {
			// メンバー行は既にコミット済み。添付失敗はログに残し、
			// 結果のステータスで呼び出し側に伝える。
			slog.Error("ファイル添付に失敗しました",
				slog.String("member_id", m.ID),
				slog.String("filename", params.Upload.Filename),
				slog.String("error", err.Error()),
			)
			result.FileStatus = model.FileStatusFailed
			return result, nil
		}
		result.File = file
		result.FileStatus = model.FileStatusAttached
	}

	return result, nil
}

// attachFile はブロブを保存し、ファイルメタデータを作成する。
// メタデータの作成に失敗した場合は保存済みブロブを削除して孤児化を防ぐ
// （削除自体の失敗はクリーンアップワーカーが拾う）。
func (s *Service) attachFile(ctx context.Context, memberID string, upload *Upload) (*model.File, error) {
	key, err := s.blobStore.Save(ctx, upload.Filename, upload.Content)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		Filename:   upload.Filename,
		StorageKey: key,
		CreatedAt:  time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.blobStore.Delete(ctx, key); delErr != nil {
			slog.Warn("孤児ブロブの削除に失敗しました",
				slog.String("storage_key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, err
	}

	return file, nil
}

// ListByTree は指定ツリーのメンバー一覧を添付ファイル付きで返す。
// 認証不要の公開操作。ツリーが存在しない場合はエラーではなく
// 空の一覧を返す。
func (s *Service) ListByTree(ctx context.Context, treeID string) ([]model.MemberWithFiles, error) {
	if treeID == "" {
		return nil, model.NewInvalidInputError("treeIdが指定されていません")
	}
	return s.memberRepo.ListByTreeWithFiles(ctx, treeID)
}
