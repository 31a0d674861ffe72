package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/kakeizu/internal/model"
)

// PostgresFileRepo はPostgreSQLを使用したファイルメタデータリポジトリ。
type PostgresFileRepo struct {
	db *sql.DB
}

// NewPostgresFileRepo はPostgresFileRepoを生成する。
func NewPostgresFileRepo(db *sql.DB) *PostgresFileRepo {
	return &PostgresFileRepo{db: db}
}

// Create はファイルメタデータを作成する。
// member_idはmembersへの外部キーであり、実在メンバーへの添付のみ許される。
func (r *PostgresFileRepo) Create(ctx context.Context, file *model.File) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO files (id, member_id, filename, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		file.ID, file.MemberID, file.Filename, file.StorageKey, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ファイルメタデータの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByIDAndMember はファイルIDとメンバーIDの両方が一致するファイルを取得する。
// ファイルIDが実在してもメンバーIDが一致しなければnilを返す
// （ファイルID単独では取得を許可しない）。
func (r *PostgresFileRepo) FindByIDAndMember(ctx context.Context, fileID, memberID string) (*model.File, error) {
	file := &model.File{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, filename, storage_key, created_at
		 FROM files
		 WHERE id = $1 AND member_id = $2`,
		fileID, memberID,
	).Scan(&file.ID, &file.MemberID, &file.Filename, &file.StorageKey, &file.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ファイルメタデータの取得に失敗しました: %w", err)
	}

	return file, nil
}

// compile-time interface check
var _ FileRepository = (*PostgresFileRepo)(nil)
