package authapimodels

import (
	"net/mail"

	"github.com/pkg/errors"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	_, err := mail.ParseAddress(r.Email)
	if err != nil {
		return errors.New("почта имеет неправильный формат")
	}
	if r.Password == "" {
		return errors.New("не указан пароль")
	}
	return nil
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"` // employee/manager/hr
	Department  string `json:"department"`
	PhoneNumber string `json:"phone_number,omitempty"`
	EmpID       string `json:"emp_id,omitempty"`
}

func (r RegisterRequest) Validate() error {
	_, err := mail.ParseAddress(r.Email)
	if err != nil {
		return errors.New("почта имеет неправильный формат")
	}
	if r.Password == "" {
		return errors.New("не указан пароль")
	}
	if r.FullName == "" {
		return errors.New("не указано имя пользователя")
	}
	return nil
}

type JWTResponse struct {
	Token string `json:"access_token"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}
