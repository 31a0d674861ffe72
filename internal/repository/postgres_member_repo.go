package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/kakeizu/internal/model"
)

// PostgresMemberRepo はPostgreSQLを使用したメンバーリポジトリ。
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo はPostgresMemberRepoを生成する。
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

// Create はメンバーを作成する。
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, tree_id, name, birthday, place_of_birth, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		member.ID, member.TreeID, member.Name,
		nullable(member.Birthday), nullable(member.PlaceOfBirth), nullable(member.Description),
		member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("メンバーの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのメンバーを取得する。見つからない場合はnilを返す。
func (r *PostgresMemberRepo) FindByID(ctx context.Context, id string) (*model.Member, error) {
	member := &model.Member{}
	var birthday, placeOfBirth, description sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tree_id, name, birthday, place_of_birth, description, created_at
		 FROM members WHERE id = $1`,
		id,
	).Scan(&member.ID, &member.TreeID, &member.Name, &birthday, &placeOfBirth, &description, &member.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メンバーの取得に失敗しました: %w", err)
	}

	member.Birthday = birthday.String
	member.PlaceOfBirth = placeOfBirth.String
	member.Description = description.String
	return member, nil
}

// ListByTreeWithFiles は指定ツリーのメンバー一覧を添付ファイル付きで返す。
// membersとfilesのLEFT JOIN1回で取得し、メンバーIDをキーに型付きでグルーピングする。
// 並び順はメンバー・ファイルともcreated_at, idの挿入順で安定している。
func (r *PostgresMemberRepo) ListByTreeWithFiles(ctx context.Context, treeID string) ([]model.MemberWithFiles, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			m.id, m.tree_id, m.name, m.birthday, m.place_of_birth, m.description, m.created_at,
			f.id, f.filename
		 FROM members m
		 LEFT JOIN files f ON f.member_id = m.id
		 WHERE m.tree_id = $1
		 ORDER BY m.created_at ASC, m.id ASC, f.created_at ASC, f.id ASC`,
		treeID,
	)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧（ファイル付き）の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	// LEFT JOINの結果行はメンバーごとに連続して並ぶため、
	// 直前のメンバーIDと比較しながら1パスで折り畳む。
	var results []model.MemberWithFiles
	index := make(map[string]int)
	for rows.Next() {
		var m model.Member
		var birthday, placeOfBirth, description sql.NullString
		var fileID, filename sql.NullString
		if err := rows.Scan(
			&m.ID, &m.TreeID, &m.Name, &birthday, &placeOfBirth, &description, &m.CreatedAt,
			&fileID, &filename,
		); err != nil {
			return nil, fmt.Errorf("メンバー行（ファイル付き）の読み取りに失敗しました: %w", err)
		}

		m.Birthday = birthday.String
		m.PlaceOfBirth = placeOfBirth.String
		m.Description = description.String

		i, ok := index[m.ID]
		if !ok {
			results = append(results, model.MemberWithFiles{
				Member: m,
				Files:  []model.FileInfo{},
			})
			i = len(results) - 1
			index[m.ID] = i
		}

		if fileID.Valid {
			results[i].Files = append(results[i].Files, model.FileInfo{
				ID:       fileID.String,
				Filename: filename.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メンバー一覧（ファイル付き）の走査に失敗しました: %w", err)
	}
	return results, nil
}

// nullable は空文字列をNULLとして保存するためのヘルパー。
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)
