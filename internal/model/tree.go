// Package model はドメインモデルを定義する。
package model

import "time"

// Tree は家系図を表す。OwnerIDは作成ユーザーへの参照であり、
// 認可判定のためのバックリファレンス（一覧は所有者に関係なく公開される）。
type Tree struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// Member は家系図に属する人物レコードを表す。
// Birthday、PlaceOfBirth、Descriptionは任意項目。
// 一度作成されたメンバーは追記専用で、更新・削除は行わない。
type Member struct {
	ID           string
	TreeID       string
	Name         string
	Birthday     string
	PlaceOfBirth string
	Description  string
	CreatedAt    time.Time
}

// File はメンバーに添付されたファイルのメタデータを表す。
// 実体のバイト列はブロブストアにStorageKeyで格納される。
// 現行の契約ではメンバーあたり0または1ファイルだが、
// 将来の複数添付を見越してMember:File = 1:Nでモデリングする。
type File struct {
	ID         string
	MemberID   string
	Filename   string
	StorageKey string
	CreatedAt  time.Time
}

// FileInfo はメンバー一覧に埋め込むファイル情報の最小表現。
type FileInfo struct {
	ID       string
	Filename string
}

// MemberWithFiles はメンバーと添付ファイル一覧を結合したビュー。
// Filesはファイルなしの場合でも空スライスであり、nilにはならない。
type MemberWithFiles struct {
	Member
	Files []FileInfo
}

// FileStatus はメンバー作成時のファイル添付結果を表す。
type FileStatus string

const (
	// FileStatusNone はアップロードが伴わなかったことを示す。
	FileStatusNone FileStatus = "none"
	// FileStatusAttached はファイル添付が成功したことを示す。
	FileStatusAttached FileStatus = "attached"
	// FileStatusFailed はメンバー作成後のファイル添付が失敗したことを示す。
	// メンバー自体の作成は成功している。
	FileStatusFailed FileStatus = "failed"
)
