package models

import "github.com/pkg/errors"

// ошибки рабочего процесса согласования, обрабатываются через errors.Is
var (
	ErrNotFound        = errors.New("запись не найдена")
	ErrUnauthorized    = errors.New("недействительные учетные данные или токен действия")
	ErrForbidden       = errors.New("операция недоступна")
	ErrAlreadyActioned = errors.New("решение по заявке уже принято")
	ErrInvalidAction   = errors.New("допустимые действия: approved или rejected")
)
