// Package auth は認証・トークン発行のドメインロジックを提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash は実在しないユーザーに対する照合で使用するbcryptハッシュ。
// メールアドレス不明の場合でもハッシュ照合を1回実行することで、
// 「ユーザーなし」と「パスワード不一致」の応答時間を揃える。
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// PasswordHasher はパスワードのハッシュ化と照合を提供する。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costはbcryptのコストパラメータ。範囲外の値はDefaultCostに丸める。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は生パスワードのbcryptハッシュを返す。生パスワードは保存しない。
func (h *PasswordHasher) Hash(rawPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(rawPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	return string(hashed), nil
}

// Verify はハッシュと生パスワードを照合する。一致すればtrueを返す。
func (h *PasswordHasher) Verify(passwordHash, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(rawPassword)) == nil
}

// VerifyDummy はダミーハッシュに対する照合を実行する。
// 結果は常にfalse。ユーザー不在時のタイミング均一化のためだけに呼ぶ。
func (h *PasswordHasher) VerifyDummy(rawPassword string) bool {
	return bcrypt.CompareHashAndPassword(dummyHash, []byte(rawPassword)) == nil
}
