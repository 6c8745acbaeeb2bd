package models

import "strings"

type LeaveStatus string

const (
	LeavePendingStatus  LeaveStatus = "pending"
	LeaveApprovedStatus LeaveStatus = "approved"
	LeaveRejectedStatus LeaveStatus = "rejected"
)

var leaveStatusHumanName = map[LeaveStatus]string{
	LeavePendingStatus:  "На рассмотрении",
	LeaveApprovedStatus: "Согласована",
	LeaveRejectedStatus: "Отклонена",
}

func (s LeaveStatus) ToHuman() string {
	if human, exist := leaveStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

// IsTerminal - по заявке принято окончательное решение
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveApprovedStatus || s == LeaveRejectedStatus
}

type DecisionAction string

const (
	DecisionApprove DecisionAction = "approved"
	DecisionReject  DecisionAction = "rejected"
)

func (a DecisionAction) IsValid() bool {
	return a == DecisionApprove || a == DecisionReject
}

func (a DecisionAction) ToStatus() LeaveStatus {
	return LeaveStatus(a)
}

var decisionHumanName = map[DecisionAction]string{
	DecisionApprove: "согласована",
	DecisionReject:  "отклонена",
}

func (a DecisionAction) ToHuman() string {
	if human, exist := decisionHumanName[a]; exist {
		return human
	}
	return string(a)
}

// VerificationSecureToken - решение принято по защищенному токену из письма
const VerificationSecureToken = "secure_token"

// VerificationPassword - решение принято по паролю назначенного согласующего
const VerificationPassword = "password"

// типы отпусков, требующие внимания отдела кадров
var hrApprovalLeaveTypes = map[string]struct{}{
	"medical":   {},
	"emergency": {},
	"extended":  {},
}

func LeaveTypeRequiresHRApproval(leaveType string) bool {
	_, exist := hrApprovalLeaveTypes[strings.ToLower(leaveType)]
	return exist
}
