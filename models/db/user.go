package dbmodels

import (
	"time"

	"leave-tools-backend/models"
	userapimodels "leave-tools-backend/models/api/users"
)

type User struct {
	BaseModel
	Password    string          `gorm:"type:varchar(128)"`
	FullName    string          `gorm:"type:varchar(300)"`
	Email       string          `gorm:"type:varchar(255);uniqueIndex"`
	Department  string          `gorm:"type:varchar(150)"`
	PhoneNumber string          `gorm:"type:varchar(15)"`
	EmpID       string          `gorm:"type:varchar(50)"`
	Role        models.UserRole `gorm:"type:varchar(50)"`
	LastLogin   time.Time
}

func (r User) ToModel() userapimodels.UserView {
	return userapimodels.UserView{
		ID:          r.ID,
		Email:       r.Email,
		FullName:    r.FullName,
		Department:  r.Department,
		PhoneNumber: r.PhoneNumber,
		EmpID:       r.EmpID,
		Role:        r.Role.ToHuman(),
		IsManager:   r.Role.IsManager(),
		IsHR:        r.Role.IsHR(),
	}
}
