package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/kakeizu/internal/model"
)

// PostgresTreeRepo はPostgreSQLを使用したツリーリポジトリ。
type PostgresTreeRepo struct {
	db *sql.DB
}

// NewPostgresTreeRepo はPostgresTreeRepoを生成する。
func NewPostgresTreeRepo(db *sql.DB) *PostgresTreeRepo {
	return &PostgresTreeRepo{db: db}
}

// Create はツリーを作成する。
// owner_idはusersへの外部キーであり、孤児ツリーはDBレベルで作成できない。
func (r *PostgresTreeRepo) Create(ctx context.Context, tree *model.Tree) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trees (id, name, owner_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		tree.ID, tree.Name, tree.OwnerID, tree.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ツリーの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのツリーを取得する。見つからない場合はnilを返す。
func (r *PostgresTreeRepo) FindByID(ctx context.Context, id string) (*model.Tree, error) {
	tree := &model.Tree{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM trees WHERE id = $1`,
		id,
	).Scan(&tree.ID, &tree.Name, &tree.OwnerID, &tree.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ツリーの取得に失敗しました: %w", err)
	}

	return tree, nil
}

// ListAll は全ツリーを挿入順で返す。
// created_atの同時刻タイをidで固定し、呼び出しごとに順序が揺れないようにする。
func (r *PostgresTreeRepo) ListAll(ctx context.Context) ([]*model.Tree, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, created_at
		 FROM trees
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ツリー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var trees []*model.Tree
	for rows.Next() {
		tree := &model.Tree{}
		if err := rows.Scan(&tree.ID, &tree.Name, &tree.OwnerID, &tree.CreatedAt); err != nil {
			return nil, fmt.Errorf("ツリー行の読み取りに失敗しました: %w", err)
		}
		trees = append(trees, tree)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ツリー一覧の走査に失敗しました: %w", err)
	}
	return trees, nil
}

// compile-time interface check
var _ TreeRepository = (*PostgresTreeRepo)(nil)
