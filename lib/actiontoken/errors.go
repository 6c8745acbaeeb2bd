package actiontoken

import (
	"github.com/pkg/errors"
)

// закрытый набор ошибок токенного слоя, наружу через шлюз уходит
// единый ответ Unauthorized без уточнения причины
var (
	ErrMalformedToken    = errors.New("некорректная структура токена действия")
	ErrExpiredToken      = errors.New("срок действия токена действия истек")
	ErrSignatureMismatch = errors.New("подпись токена действия не прошла проверку")
	ErrIntegrityMismatch = errors.New("токен действия не прошел проверку целостности")
	ErrLeaveMismatch     = errors.New("токен действия не соответствует заявке")
)

// IsTokenError - ошибка относится к проверке токена действия
func IsTokenError(err error) bool {
	for _, known := range []error{
		ErrMalformedToken,
		ErrExpiredToken,
		ErrSignatureMismatch,
		ErrIntegrityMismatch,
		ErrLeaveMismatch,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
