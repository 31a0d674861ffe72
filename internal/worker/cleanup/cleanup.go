// Package cleanup は孤児ブロブの自動削除ジョブを提供する。
// メンバー作成中のメタデータ保存失敗などでfilesテーブルから参照されなく
// なったブロブを日次バッチで削除する。書き込み途中のブロブを誤って消さない
// よう、猶予期間より新しいブロブは対象外とする。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kakeizu/internal/blob"
)

// Querier はSQLのQueryContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// CleanupJob はfilesテーブルから参照されていないブロブの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db          Querier
	store       blob.Store
	logger      *slog.Logger
	GracePeriod time.Duration // この期間より新しいブロブは削除しない（デフォルト: 1時間）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの猶予期間は1時間。
func NewCleanupJob(db Querier, store blob.Store, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:          db,
		store:       store,
		logger:      logger,
		GracePeriod: 1 * time.Hour,
	}
}

// Run はfilesテーブルから参照されていないブロブを削除する。
// ブロブストアの全キーを列挙し、filesテーブルに存在するstorage_keyを
// 除外した残りのうち、更新時刻が猶予期間より古いものを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	referenced, err := j.referencedKeys(ctx)
	if err != nil {
		j.logger.Error("参照中ストレージキーの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("参照中ストレージキーの取得に失敗: %w", err)
	}

	blobs, err := j.store.List(ctx)
	if err != nil {
		j.logger.Error("ブロブ一覧の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("ブロブ一覧の取得に失敗: %w", err)
	}

	cutoff := start.Add(-j.GracePeriod)

	var deletedCount int64
	for _, b := range blobs {
		if _, ok := referenced[b.Key]; ok {
			continue
		}
		if b.ModTime.After(cutoff) {
			continue
		}

		if err := j.store.Delete(ctx, b.Key); err != nil {
			// 1件の失敗でジョブ全体を止めず、次回実行に委ねる
			j.logger.Warn("孤児ブロブの削除に失敗しました",
				slog.String("key", b.Key),
				slog.String("error", err.Error()),
			)
			continue
		}
		deletedCount++
	}

	duration := time.Since(start)
	j.logger.Info("孤児ブロブクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("scanned_count", len(blobs)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// referencedKeys はfilesテーブルに存在する全storage_keyの集合を返す。
func (j *CleanupJob) referencedKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT storage_key FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}
