package leaveapimodels

import (
	"net/mail"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

type LeaveRequestData struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	LeaveType     string `json:"leave_type"`
	Reason        string `json:"reason"`
	ApproverEmail string `json:"approver_email"`
}

func (r LeaveRequestData) Validate() error {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return errors.New("дата начала имеет неправильный формат, ожидается ГГГГ-ММ-ДД")
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return errors.New("дата окончания имеет неправильный формат, ожидается ГГГГ-ММ-ДД")
	}
	if end.Before(start) {
		return errors.New("дата окончания раньше даты начала")
	}
	if r.LeaveType == "" {
		return errors.New("не указан тип отпуска")
	}
	if _, err = mail.ParseAddress(r.ApproverEmail); err != nil {
		return errors.New("почта согласующего имеет неправильный формат")
	}
	return nil
}

type SubmitResponse struct {
	LeaveRequestID string `json:"leave_request_id"`
	Status         string `json:"status"`
}

// DecisionRequest - решение назначенного согласующего по паролю, без сессии
type DecisionRequest struct {
	Password string `json:"password"`
	Comments string `json:"comments,omitempty"`
}

func (r DecisionRequest) Validate() error {
	if r.Password == "" {
		return errors.New("не указан пароль")
	}
	return nil
}

// SecureDecisionRequest - решение по защищенному токену действия из письма
type SecureDecisionRequest struct {
	ActionToken string `json:"action_token"`
	Password    string `json:"password"`
	Action      string `json:"action"` // approved/rejected
	Comments    string `json:"comments,omitempty"`
}

func (r SecureDecisionRequest) Validate() error {
	if r.ActionToken == "" {
		return errors.New("не указан токен действия")
	}
	if r.Password == "" {
		return errors.New("не указан пароль")
	}
	if r.Action == "" {
		return errors.New("не указано действие")
	}
	return nil
}

type DecisionResponse struct {
	LeaveRequestID    string     `json:"leave_id"`
	Status            string     `json:"status"`
	AlreadyProcessed  bool       `json:"already_processed"`
	DecidedBy         string     `json:"decided_by,omitempty"`
	LogID             string     `json:"log_id,omitempty"`
	ActionTimestamp   *time.Time `json:"action_timestamp,omitempty"`
	VerificationLevel string     `json:"verification_level,omitempty"`
}

type LeaveRequestView struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	EmployeeName       string     `json:"employee_name,omitempty"`
	ApproverID         string     `json:"approver_id"`
	ApproverEmail      string     `json:"approver_email"`
	LeaveType          string     `json:"leave_type"`
	StartDate          string     `json:"start_date"`
	EndDate            string     `json:"end_date"`
	Reason             string     `json:"reason"`
	RequiresHRApproval bool       `json:"requires_hr_approval"`
	Status             string     `json:"status"`
	StatusHuman        string     `json:"status_human"`
	ActionTaken        bool       `json:"is_action_taken"`
	ActualApproverID   string     `json:"actual_approver_id,omitempty"`
	ActionTimestamp    *time.Time `json:"action_timestamp,omitempty"`
	Comments           string     `json:"comments,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ApprovalLogView struct {
	LogID             string    `json:"log_id"`
	Action            string    `json:"action"`
	ApproverID        string    `json:"approver_id"`
	ApproverEmail     string    `json:"approver_email"`
	ApproverName      string    `json:"approver_name,omitempty"`
	Comments          string    `json:"comments,omitempty"`
	IPAddress         string    `json:"ip_address,omitempty"`
	UserAgent         string    `json:"user_agent,omitempty"`
	VerificationLevel string    `json:"verification_level"`
	Timestamp         time.Time `json:"timestamp"`
}

type ApprovalLogsResponse struct {
	LeaveRequestID string            `json:"leave_id"`
	CurrentStatus  string            `json:"current_status"`
	ActionTaken    bool              `json:"is_action_taken"`
	ApprovalLogs   []ApprovalLogView `json:"approval_logs"`
	TotalActions   int               `json:"total_actions"`
}

type ActionTokenResponse struct {
	LeaveRequestID string `json:"leave_id"`
	ActionToken    string `json:"action_token"`
	ExpiresInHours int    `json:"expires_in_hours"`
	GeneratedFor   string `json:"generated_for"`
}
