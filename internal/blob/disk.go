package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DiskStore はローカルファイルシステムを使用したブロブストア。
// キーは保存時刻のナノ秒タイムスタンプ＋元ファイルの拡張子
// （例: "1735689600123456789.jpg"）で、ディレクトリ直下に平置きする。
type DiskStore struct {
	dir string

	// now はテストで時刻を固定するための関数。
	now func() time.Time
}

// NewDiskStore はDiskStoreを生成する。ディレクトリがなければ作成する。
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗しました: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Save はrの内容をディスクに保存し、キーを返す。
func (s *DiskStore) Save(ctx context.Context, suggestedName string, r io.Reader) (string, error) {
	key := strconv.FormatInt(s.now().UnixNano(), 10) + filepath.Ext(suggestedName)
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("ブロブファイルの作成に失敗しました: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("ブロブの書き込みに失敗しました: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("ブロブファイルのクローズに失敗しました: %w", err)
	}

	return key, nil
}

// Open は指定キーのブロブを開く。
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("ブロブのオープンに失敗しました: %w", err)
	}
	return f, nil
}

// Delete は指定キーのブロブを削除する。存在しない場合はエラーにしない。
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ブロブの削除に失敗しました: %w", err)
	}
	return nil
}

// List はディレクトリ直下の全ブロブを返す。
func (s *DiskStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ブロブ一覧の取得に失敗しました: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Key:     e.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return infos, nil
}

// compile-time interface check
var _ Store = (*DiskStore)(nil)
