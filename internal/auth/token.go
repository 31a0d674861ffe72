package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/kakeizu/internal/model"
)

// Claims はJWTの標準クレームにユーザーIDを加えたクレーム構造。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenService はセッショントークンの発行と検証を提供する。
// トークンはHMAC-SHA256署名付きJWTであり、ペイロードを1バイトでも
// 改ざんすると署名検証で無効になる。有効期限はトークン自体に埋め込み、
// サーバー側に状態は持たない。
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService はTokenServiceを生成する。
// ttlは発行からの有効期間（デフォルト1時間を想定）。
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue は指定ユーザーのトークンを発行する。
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate はトークンを検証し、含まれるユーザーIDを返す。
// 改ざん・形式不正はTOKEN_INVALID、期限切れはTOKEN_EXPIREDを返す。
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.NewTokenExpiredError()
		}
		return "", model.NewTokenInvalidError()
	}

	if !token.Valid || claims.UserID == "" {
		return "", model.NewTokenInvalidError()
	}

	return claims.UserID, nil
}
