// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/kakeizu/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はmodel.APIError（DUPLICATE_EMAIL）を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスは保存時の表記どおり大文字小文字を区別して比較する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TreeRepository はツリーデータの永続化インターフェース。
type TreeRepository interface {
	// Create はツリーを作成する。owner_idは外部キーで実在ユーザーを保証する。
	Create(ctx context.Context, tree *model.Tree) error

	// FindByID は指定IDのツリーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tree, error)

	// ListAll は全ツリーを所有者に関係なく挿入順で返す。
	ListAll(ctx context.Context) ([]*model.Tree, error)
}

// MemberRepository はメンバーデータの永続化インターフェース。
type MemberRepository interface {
	// Create はメンバーを作成する。
	Create(ctx context.Context, member *model.Member) error

	// FindByID は指定IDのメンバーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Member, error)

	// ListByTreeWithFiles は指定ツリーのメンバー一覧を添付ファイル付きで返す。
	// membersとfilesのLEFT JOIN1回で取得し、メンバー数に比例したクエリ
	// （N+1パターン）は発行しない。ファイルなしのメンバーのFilesは空スライス。
	// メンバー・ファイルとも挿入順で安定している。
	ListByTreeWithFiles(ctx context.Context, treeID string) ([]model.MemberWithFiles, error)
}

// FileRepository はファイルメタデータの永続化インターフェース。
type FileRepository interface {
	// Create はファイルメタデータを作成する。
	Create(ctx context.Context, file *model.File) error

	// FindByIDAndMember はファイルIDとメンバーIDの両方が一致するファイルを取得する。
	// 組が一致しない場合はファイルが実在してもnilを返す。
	FindByIDAndMember(ctx context.Context, fileID, memberID string) (*model.File, error)
}
