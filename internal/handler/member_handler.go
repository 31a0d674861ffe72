package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/kakeizu/internal/member"
	"github.com/hitoshi/kakeizu/internal/middleware"
	"github.com/hitoshi/kakeizu/internal/model"
)

// multipartMemoryLimit はマルチパート解析時にメモリへ保持する上限。
// これを超える部分は一時ファイルに退避される。
const multipartMemoryLimit = 32 << 20 // 32 MiB

// MemberServiceInterface はメンバーハンドラーが必要とするサービスインターフェース。
type MemberServiceInterface interface {
	// Create は新しいメンバーを作成し、添付ファイルがあれば保存する。
	Create(ctx context.Context, callerID string, params member.CreateParams) (*member.CreateResult, error)
	// ListByTree は指定ツリーのメンバー一覧を添付ファイル付きで返す。
	ListByTree(ctx context.Context, treeID string) ([]model.MemberWithFiles, error)
}

// UploadRecorder はメンバー作成・アップロード結果の記録先インターフェース。
// metrics.Collectorの部分集合として定義する。
type UploadRecorder interface {
	RecordMemberCreated(treeID string)
	RecordFileUpload(bytes int64)
	RecordFileUploadFailure()
}

// MemberHandler はメンバー管理のHTTPハンドラー。
type MemberHandler struct {
	service        MemberServiceInterface
	metrics        UploadRecorder
	maxUploadBytes int64
}

// NewMemberHandler はMemberHandlerを生成する。metricsはnilを許容する。
// maxUploadBytesはアップロード1件あたりの上限バイト数。
func NewMemberHandler(service MemberServiceInterface, metrics UploadRecorder, maxUploadBytes int64) *MemberHandler {
	return &MemberHandler{
		service:        service,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

// fileInfoResponse はメンバー一覧に埋め込むファイル情報。
type fileInfoResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// memberResponse はメンバー情報のAPIレスポンス。
// Filesはファイルなしでも空配列であり、フィールド省略やnullにはならない。
type memberResponse struct {
	ID           string             `json:"id"`
	TreeID       string             `json:"tree_id"`
	Name         string             `json:"name"`
	Birthday     string             `json:"birthday,omitempty"`
	PlaceOfBirth string             `json:"place_of_birth,omitempty"`
	Description  string             `json:"description,omitempty"`
	Files        []fileInfoResponse `json:"files"`
}

// createMemberResponse はメンバー作成のレスポンス。
// FileStatusはファイル添付の結末（none / attached / failed）を示す。
// メンバー行のコミット後に添付が失敗してもメンバー作成自体は成功として返す。
type createMemberResponse struct {
	ID         string            `json:"id"`
	FileStatus string            `json:"file_status"`
	File       *fileInfoResponse `json:"file,omitempty"`
}

// ListMembers は指定ツリーのメンバー一覧を添付ファイル付きで返す。認証不要。
// GET /api/members?treeId=xxx
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	treeID := r.URL.Query().Get("treeId")
	if treeID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("treeIdクエリパラメータが指定されていません"))
		return
	}

	members, err := h.service.ListByTree(r.Context(), treeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		files := make([]fileInfoResponse, 0, len(m.Files))
		for _, f := range m.Files {
			files = append(files, fileInfoResponse{ID: f.ID, Filename: f.Filename})
		}
		resp = append(resp, memberResponse{
			ID:           m.ID,
			TreeID:       m.TreeID,
			Name:         m.Name,
			Birthday:     m.Birthday,
			PlaceOfBirth: m.PlaceOfBirth,
			Description:  m.Description,
			Files:        files,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateMember は新しいメンバーを作成する。multipart/form-dataで受け付け、
// fileパートが存在する場合は1件の添付ファイルとして保存する。
// POST /api/members
// ボディ全体をMaxBytesReaderで制限し、上限超過はファイルレジストリに
// 到達する前にPAYLOAD_TOO_LARGEとして弾く。
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	// マルチパートのフレーミング分を考慮し、ボディはファイル上限+1MiBまで許す
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge,
				model.NewPayloadTooLargeError(h.maxUploadBytes))
			return
		}
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("multipart/form-dataの解析に失敗しました"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				slog.Warn("マルチパート一時ファイルの削除に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}()

	params := member.CreateParams{
		TreeID:       r.FormValue("treeId"),
		Name:         r.FormValue("name"),
		Birthday:     r.FormValue("birthday"),
		PlaceOfBirth: r.FormValue("placeOfBirth"),
		Description:  r.FormValue("description"),
	}

	var uploadSize int64
	f, fh, err := r.FormFile("file")
	if err == nil {
		defer f.Close()
		if fh.Size > h.maxUploadBytes {
			writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge,
				model.NewPayloadTooLargeError(h.maxUploadBytes))
			return
		}
		uploadSize = fh.Size
		params.Upload = &member.Upload{
			Filename: fh.Filename,
			Content:  f,
		}
	} else if err != http.ErrMissingFile {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("fileパートの読み取りに失敗しました"))
		return
	}

	result, err := h.service.Create(r.Context(), userID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordMemberCreated(result.Member.TreeID)
		switch result.FileStatus {
		case model.FileStatusAttached:
			h.metrics.RecordFileUpload(uploadSize)
		case model.FileStatusFailed:
			h.metrics.RecordFileUploadFailure()
		}
	}

	resp := createMemberResponse{
		ID:         result.Member.ID,
		FileStatus: string(result.FileStatus),
	}
	if result.File != nil {
		resp.File = &fileInfoResponse{ID: result.File.ID, Filename: result.File.Filename}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// --- 共有ヘルパー ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// invalidRequestBodyError はJSONボディ解析失敗のエラーを生成する。
func invalidRequestBodyError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		if statusCode == http.StatusInternalServerError {
			// ストレージ障害の詳細はログにのみ残す
			slog.Error("internal error", slog.String("code", apiErr.Code), slog.String("error", err.Error()))
		}
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う。
	// 生のドライバエラーメッセージはレスポンスに含めない。
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials, model.ErrCodeTokenInvalid, model.ErrCodeTokenExpired, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeTreeNotFound, model.ErrCodeMemberNotFound, model.ErrCodeFileNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidInput, "INVALID_REQUEST":
		return http.StatusBadRequest
	case model.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
