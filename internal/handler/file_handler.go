package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeizu/internal/model"
)

// FileServiceInterface はファイルハンドラーが必要とするサービスインターフェース。
type FileServiceInterface interface {
	// Get は(fileID, memberID)の組でファイルメタデータと内容のストリームを返す。
	Get(ctx context.Context, fileID, memberID string) (*model.File, io.ReadCloser, error)
}

// FileHandler はファイルダウンロードのHTTPハンドラー。
type FileHandler struct {
	service FileServiceInterface
}

// NewFileHandler はFileHandlerを生成する。
func NewFileHandler(service FileServiceInterface) *FileHandler {
	return &FileHandler{
		service: service,
	}
}

// Download はメンバーに紐づくファイルの内容をストリーミングで返す。認証不要。
// GET /api/members/{id}/files/{fileId}
// ファイルIDとメンバーIDの組が一致しない場合は404を返す。
// Content-Dispositionには登録時の元ファイル名を設定する。
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	fileID := chi.URLParam(r, "fileId")

	f, rc, err := h.service.Get(r.Context(), fileID, memberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(f.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename}))

	if _, err := io.Copy(w, rc); err != nil {
		// ヘッダー送信後の転送エラーはレスポンスを変更できないためログのみ
		slog.Error("ファイル転送に失敗しました",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
	}
}
