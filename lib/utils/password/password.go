package password

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Hash - медленное солёное хеширование, открытый пароль нигде не хранится
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "ошибка хеширования пароля")
	}
	return string(hashed), nil
}

func Verify(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
