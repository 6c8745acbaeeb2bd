package actiontoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Encode - сериализует плоский набор полей и срок действия в подписанный
// компактный токен. Временные поля задает вызывающая сторона.
func Encode(claims jwt.MapClaims, expiresAt time.Time, key string) (string, error) {
	claims["exp"] = expiresAt.Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", errors.Wrap(err, "ошибка подписи токена")
	}
	return signed, nil
}

// Decode - проверяет подпись и срок действия, возвращает поля токена
func Decode(tokenString, key string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(key), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureMismatch
		default:
			return nil, ErrMalformedToken
		}
	}
	return claims, nil
}

// PeekUnverifiedClaims - разбирает поля токена БЕЗ проверки подписи.
// Используется только для извлечения соли, по которой восстанавливается
// ключ проверки. Для авторизации результат использовать нельзя.
func PeekUnverifiedClaims(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
