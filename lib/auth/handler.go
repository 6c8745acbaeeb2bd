package authhandler

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"leave-tools-backend/db"
	usersstore "leave-tools-backend/lib/users/store"
	authutils "leave-tools-backend/lib/utils/auth-utils"
	"leave-tools-backend/lib/utils/password"
	"leave-tools-backend/models"
	authapimodels "leave-tools-backend/models/api/auth"
	userapimodels "leave-tools-backend/models/api/users"
	dbmodels "leave-tools-backend/models/db"
)

type Provider interface {
	Login(email, plainPassword string) (response authapimodels.JWTResponse, err error)
	Register(data authapimodels.RegisterRequest) (userID string, hMsg string, err error)
	Me(userID string) (view userapimodels.UserView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		usersStore: usersstore.NewInstance(db.DB),
	}
}

type impl struct {
	usersStore usersstore.Provider
}

func (i impl) Login(email, plainPassword string) (response authapimodels.JWTResponse, err error) {
	logger := log.WithField("email", email)
	user, err := i.usersStore.FindByEmail(email)
	if err != nil {
		logger.
			WithError(err).
			Error("ошибка поиска пользователя по почте")
		return authapimodels.JWTResponse{}, err
	}
	if user == nil {
		logger.Debug("пользователь с такой почтой не найден")
		return authapimodels.JWTResponse{}, errors.New("неверная почта или пароль")
	}
	if !password.Verify(plainPassword, user.Password) {
		logger.Debug("пользователь не прошел проверку пароля")
		return authapimodels.JWTResponse{}, errors.New("неверная почта или пароль")
	}
	tokenString, err := authutils.GetToken(user.ID, user.FullName, user.Email, user.Role)
	if err != nil {
		logger.WithError(err).Error("ошибка генерации JWT")
		return authapimodels.JWTResponse{}, err
	}
	err = i.usersStore.SetLastLogin(user.ID, time.Now())
	if err != nil {
		logger.
			WithError(err).
			Error("ошибка обновления даты последнего входа")
	}
	return authapimodels.JWTResponse{
		Token: tokenString,
	}, nil
}

func (i impl) Register(data authapimodels.RegisterRequest) (userID string, hMsg string, err error) {
	logger := log.WithField("email", data.Email)
	exist, err := i.usersStore.ExistByEmail(data.Email)
	if err != nil {
		logger.WithError(err).Error("ошибка проверки почты")
		return "", "", err
	}
	if exist {
		return "", "Такая почта уже зарегистрирована в системе", nil
	}
	hashed, err := password.Hash(data.Password)
	if err != nil {
		logger.WithError(err).Error("ошибка хеширования пароля")
		return "", "", err
	}
	rec := dbmodels.User{
		Password:    hashed,
		FullName:    data.FullName,
		Email:       data.Email,
		Department:  data.Department,
		PhoneNumber: data.PhoneNumber,
		EmpID:       data.EmpID,
		Role:        parseRole(data.Role),
	}
	userID, err = i.usersStore.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка создания пользователя")
		return "", "", err
	}
	return userID, "", nil
}

func (i impl) Me(userID string) (view userapimodels.UserView, err error) {
	user, err := i.usersStore.GetByID(userID)
	if err != nil {
		return userapimodels.UserView{}, err
	}
	if user == nil {
		return userapimodels.UserView{}, models.ErrNotFound
	}
	return user.ToModel(), nil
}

func parseRole(role string) models.UserRole {
	switch role {
	case "manager":
		return models.ManagerRole
	case "hr":
		return models.HRRole
	default:
		return models.EmployeeRole
	}
}
