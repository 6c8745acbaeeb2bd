package dbmodels

import (
	"time"

	"leave-tools-backend/models"
	leaveapimodels "leave-tools-backend/models/api/leave"
)

type LeaveRequest struct {
	BaseModel
	EmployeeID    string `gorm:"type:varchar(36);index"`
	Employee      *User  `gorm:"foreignKey:EmployeeID"`
	ApproverID    string `gorm:"type:varchar(36);index"` //назначенный согласующий
	Approver      *User  `gorm:"foreignKey:ApproverID"`
	ApproverEmail string `gorm:"type:varchar(255)"`
	LeaveType     string `gorm:"type:varchar(50)"`
	StartDate     string `gorm:"type:varchar(10)"`
	EndDate       string `gorm:"type:varchar(10)"`
	Reason        string `gorm:"type:text"`

	RequiresHRApproval bool

	Status           models.LeaveStatus `gorm:"type:varchar(20);default:'pending'"`
	ActionTaken      bool               `gorm:"default:false"`
	ActualApproverID string             `gorm:"type:varchar(36)"` //кто фактически принял решение
	ActionTimestamp  *time.Time
	Comments         string `gorm:"type:text"`
	//последний выданный токен действия, справочно - проверка токена не зависит от этого поля
	SecurityToken string `gorm:"type:text"`

	ApprovalLogs []ApprovalLog `gorm:"foreignKey:LeaveRequestID"`
}

// CanTransition - по заявке еще не принято решение
func (r LeaveRequest) CanTransition() bool {
	return !r.ActionTaken
}

func (r LeaveRequest) ToModel() leaveapimodels.LeaveRequestView {
	view := leaveapimodels.LeaveRequestView{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		ApproverID:         r.ApproverID,
		ApproverEmail:      r.ApproverEmail,
		LeaveType:          r.LeaveType,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		Reason:             r.Reason,
		RequiresHRApproval: r.RequiresHRApproval,
		Status:             string(r.Status),
		StatusHuman:        r.Status.ToHuman(),
		ActionTaken:        r.ActionTaken,
		ActualApproverID:   r.ActualApproverID,
		Comments:           r.Comments,
		CreatedAt:          r.CreatedAt,
	}
	if r.ActionTimestamp != nil {
		view.ActionTimestamp = r.ActionTimestamp
	}
	if r.Employee != nil {
		view.EmployeeName = r.Employee.FullName
	}
	return view
}

type ApprovalLog struct {
	BaseModel
	LeaveRequestID    string                `gorm:"type:varchar(36);index"`
	Action            models.DecisionAction `gorm:"type:varchar(20)"`
	ApproverID        string                `gorm:"type:varchar(36)"`
	ApproverEmail     string                `gorm:"type:varchar(255)"`
	Comments          string                `gorm:"type:text"`
	IPAddress         string                `gorm:"type:varchar(45)"`
	UserAgent         string                `gorm:"type:varchar(512)"`
	VerificationLevel string                `gorm:"type:varchar(30)"`
}

func (r ApprovalLog) ToModel() leaveapimodels.ApprovalLogView {
	return leaveapimodels.ApprovalLogView{
		LogID:             r.ID,
		Action:            string(r.Action),
		ApproverID:        r.ApproverID,
		ApproverEmail:     r.ApproverEmail,
		Comments:          r.Comments,
		IPAddress:         r.IPAddress,
		UserAgent:         r.UserAgent,
		VerificationLevel: r.VerificationLevel,
		Timestamp:         r.CreatedAt,
	}
}
