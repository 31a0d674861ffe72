// Package blob はアップロードされたファイル実体の保管を提供する。
// リポジトリ層はメタデータのみを持ち、バイト列はこのパッケージの
// Store実装（ローカルディスクまたはS3互換オブジェクトストレージ）に
// 不透明なキーで格納される。
package blob

import (
	"context"
	"io"
	"time"
)

// Info はストア内のブロブ1件の情報を表す。クリーンアップジョブで使用する。
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store はブロブストレージのインターフェース。
type Store interface {
	// Save はrの内容を保存し、取得用の不透明なキーを返す。
	// suggestedNameは拡張子の引き継ぎにのみ使用し、キーの衝突回避は
	// ストア側のタイムスタンプ採番に委ねる。
	Save(ctx context.Context, suggestedName string, r io.Reader) (string, error)

	// Open は指定キーのブロブを読み取り用に開く。呼び出し側がCloseする。
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete は指定キーのブロブを削除する。存在しないキーはエラーにしない。
	Delete(ctx context.Context, key string) error

	// List は保存済みブロブの一覧を返す。
	List(ctx context.Context) ([]Info, error)
}
