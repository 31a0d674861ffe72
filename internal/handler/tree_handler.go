package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/kakeizu/internal/middleware"
	"github.com/hitoshi/kakeizu/internal/model"
)

// TreeServiceInterface はツリーハンドラーが必要とするサービスインターフェース。
type TreeServiceInterface interface {
	// Create は新しいツリーを作成する。
	Create(ctx context.Context, ownerID, name string) (*model.Tree, error)
	// ListAll は全ツリーを挿入順で返す。
	ListAll(ctx context.Context) ([]*model.Tree, error)
}

// TreeHandler はツリー管理のHTTPハンドラー。
type TreeHandler struct {
	service TreeServiceInterface
}

// NewTreeHandler はTreeHandlerを生成する。
func NewTreeHandler(service TreeServiceInterface) *TreeHandler {
	return &TreeHandler{
		service: service,
	}
}

// createTreeRequest はツリー作成リクエストのボディ。
// nameのフィールド欠落とnullを空文字列と区別するためポインタで受ける。
type createTreeRequest struct {
	Name *string `json:"name"`
}

// treeResponse はツリー情報のAPIレスポンス。
type treeResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// ListTrees は全ツリーの一覧を返す。認証不要。
// GET /api/trees
func (h *TreeHandler) ListTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]treeResponse, 0, len(trees))
	for _, t := range trees {
		resp = append(resp, treeResponse{
			ID:      t.ID,
			Name:    t.Name,
			OwnerID: t.OwnerID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateTree は新しいツリーを作成する。
// POST /api/trees
// nameは空文字列を許容するが、フィールド自体の欠落とnullは
// INVALID_INPUTとして明示的に弾く。
func (h *TreeHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	if req.Name == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("nameフィールドがありません"))
		return
	}

	tree, err := h.service.Create(r.Context(), userID, *req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": tree.ID})
}
