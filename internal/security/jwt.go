package security

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expense-tracker/config"
	"expense-tracker/internal/common"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer : значение iss во всех выпущенных токенах
const Issuer = "expense-tracker"

type contextKey string

const (
	UserContextKey contextKey = "user"
)

type Claims struct {
	jwt.RegisteredClaims
}

// Principal : аутентифицированный пользователь текущего запроса
type Principal struct {
	UserUUID    string
	AccessToken string
}

type JWTService struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTService копирует секрет из конфига один раз; дальше он не меняется
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	if cfg == nil || cfg.SecretKey == "" {
		return nil, errors.New("секрет для подписи токенов не задан")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("некорректный access_token_ttl: %s", cfg.AccessTokenTTL)
	}

	return &JWTService{
		secret:    []byte(cfg.SecretKey),
		accessTTL: cfg.AccessTokenTTL,
	}, nil
}

// Mint выпускает HS256 токен для subject со сроком жизни accessTTL от now.
// Claims хранят целые секунды: exp округляется вверх, поэтому токен
// действует не меньше accessTTL и не больше accessTTL плюс секунда.
func (service *JWTService) Mint(subject string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilToSecond(now.Add(service.accessTTL))),
			ID:        uuid.NewString(),
			Issuer:    Issuer,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return accessToken, nil
}

func ceilToSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}

// Verify возвращает subject токена.
//
// Подпись проверяется первой и по исходным байтам токена, поэтому любое
// изменение токена дает ErrSignatureMismatch. Разбор claims выполняется
// только для аутентичных токенов.
func (service *JWTService) Verify(tokenStr string, now time.Time) (string, error) {
	dot := strings.LastIndexByte(tokenStr, '.')
	if dot < 0 {
		return "", common.ErrMalformedToken
	}

	signature, err := base64.RawURLEncoding.Strict().DecodeString(tokenStr[dot+1:])
	if err != nil {
		return "", common.ErrSignatureMismatch
	}
	if err := jwt.SigningMethodHS256.Verify(tokenStr[:dot], signature, service.secret); err != nil {
		return "", common.ErrSignatureMismatch
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: пустой sub", common.ErrMalformedToken)
	}

	return claims.Subject, nil
}

// BearerToken достает токен из заголовка Authorization
func BearerToken(r *http.Request) (string, bool) {
	authorizationHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authorizationHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func JWTMiddleware(issuer ports.AccessTokenIssuer, clock ports.Clock, logger logging.Logger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(issuer, clock, logger, next))
	}
}

func handleAuthentication(issuer ports.AccessTokenIssuer, clock ports.Clock, logger logging.Logger, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		token, ok := BearerToken(request)
		if !ok {
			logger.Info(request.Context(), "запрос без bearer токена", "path", request.URL.Path)
			util.HandleError(writer, common.ErrMalformedToken)
			return
		}

		subject, err := issuer.Verify(token, clock.Now())
		if err != nil {
			logger.Info(request.Context(), "access токен отклонен", "path", request.URL.Path, "kind", err.Error())
			util.HandleError(writer, err)
			return
		}

		principal := &Principal{UserUUID: subject, AccessToken: token}
		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, principal))
		next.ServeHTTP(writer, req)
	}
}

func GetPrincipalFromContext(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(UserContextKey).(*Principal)
	if !ok || principal == nil {
		return nil, common.ErrMalformedToken
	}
	return principal, nil
}
