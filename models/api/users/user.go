package userapimodels

type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Department  string `json:"department,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	EmpID       string `json:"emp_id,omitempty"`
	Role        string `json:"role"`
	IsManager   bool   `json:"is_manager"`
	IsHR        bool   `json:"is_hr"`
}
