package ports

import "time"

// AccessTokenIssuer выпускает и проверяет подписанные access токены
type AccessTokenIssuer interface {
	Mint(subject string, now time.Time) (string, error)
	Verify(token string, now time.Time) (string, error)
}
