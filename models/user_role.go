package models

type UserRole string

const (
	EmployeeRole UserRole = "EMPLOYEE"
	ManagerRole  UserRole = "MANAGER"
	HRRole       UserRole = "HR"
)

var roleHumanName = map[UserRole]string{
	EmployeeRole: "Сотрудник",
	ManagerRole:  "Руководитель",
	HRRole:       "Сотрудник отдела кадров",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsManager() bool {
	return r == ManagerRole
}

func (r UserRole) IsHR() bool {
	return r == HRRole
}

// CanDecide - роль позволяет принимать решения по заявкам
func (r UserRole) CanDecide() bool {
	return r.IsManager() || r.IsHR()
}
