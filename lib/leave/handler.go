package leavehandler

import (
	log "github.com/sirupsen/logrus"

	"leave-tools-backend/db"
	"leave-tools-backend/lib/actiontoken"
	emailsender "leave-tools-backend/lib/email-sender"
	leavestore "leave-tools-backend/lib/leave/store"
	usersstore "leave-tools-backend/lib/users/store"
	"leave-tools-backend/models"
	leaveapimodels "leave-tools-backend/models/api/leave"
	dbmodels "leave-tools-backend/models/db"
)

type Provider interface {
	Submit(employeeID string, data leaveapimodels.LeaveRequestData) (leaveapimodels.SubmitResponse, error)
	MyRequests(employeeID string) ([]leaveapimodels.LeaveRequestView, error)
	PendingApprovals(approverID string) ([]leaveapimodels.LeaveRequestView, error)
	ApprovalLogs(leaveRequestID, callerID string) (leaveapimodels.ApprovalLogsResponse, error)
	GenerateActionToken(leaveRequestID, callerID string) (leaveapimodels.ActionTokenResponse, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		leaveStore: leavestore.NewInstance(db.DB),
		usersStore: usersstore.NewInstance(db.DB),
		tokens:     actiontoken.Instance,
		sender:     emailsender.Instance,
	}
}

type impl struct {
	leaveStore leavestore.Provider
	usersStore usersstore.Provider
	tokens     actiontoken.Provider
	sender     emailsender.Provider
}

func (i impl) GetLogger(leaveRequestID string) *log.Entry {
	return log.WithField("leave_request_id", leaveRequestID)
}

// Submit - создает заявку, выпускает токен действия для назначенного
// согласующего и отправляет ему письмо со ссылками решения.
// Неудача выпуска токена или отправки письма не отменяет создание заявки.
func (i impl) Submit(employeeID string, data leaveapimodels.LeaveRequestData) (leaveapimodels.SubmitResponse, error) {
	employee, err := i.usersStore.GetByID(employeeID)
	if err != nil {
		return leaveapimodels.SubmitResponse{}, err
	}
	if employee == nil {
		return leaveapimodels.SubmitResponse{}, models.ErrNotFound
	}
	approver, err := i.usersStore.FindByEmail(data.ApproverEmail)
	if err != nil {
		return leaveapimodels.SubmitResponse{}, err
	}
	if approver == nil {
		return leaveapimodels.SubmitResponse{}, models.ErrNotFound
	}

	rec := dbmodels.LeaveRequest{
		EmployeeID:         employeeID,
		ApproverID:         approver.ID,
		ApproverEmail:      approver.Email,
		LeaveType:          data.LeaveType,
		StartDate:          data.StartDate,
		EndDate:            data.EndDate,
		Reason:             data.Reason,
		RequiresHRApproval: models.LeaveTypeRequiresHRApproval(data.LeaveType),
		Status:             models.LeavePendingStatus,
	}
	leaveRequestID, err := i.leaveStore.Create(rec)
	if err != nil {
		return leaveapimodels.SubmitResponse{}, err
	}
	logger := i.GetLogger(leaveRequestID)

	actionToken, err := i.tokens.Issue(leaveRequestID, approver.ID)
	if err != nil {
		logger.WithError(err).Error("ошибка выпуска токена действия")
	} else {
		err = i.leaveStore.Update(leaveRequestID, map[string]interface{}{"security_token": actionToken})
		if err != nil {
			logger.WithError(err).Error("ошибка сохранения токена действия в заявке")
		}
		err = i.sender.SendApprovalRequest(emailsender.ApprovalEmailData{
			LeaveRequestID: leaveRequestID,
			EmployeeName:   employee.FullName,
			Department:     employee.Department,
			LeaveType:      data.LeaveType,
			StartDate:      data.StartDate,
			EndDate:        data.EndDate,
			Reason:         data.Reason,
			ApproverEmail:  approver.Email,
			ActionToken:    actionToken,
		})
		if err != nil {
			logger.WithError(err).Error("ошибка отправки письма согласующему")
		}
	}

	return leaveapimodels.SubmitResponse{
		LeaveRequestID: leaveRequestID,
		Status:         string(models.LeavePendingStatus),
	}, nil
}

func (i impl) MyRequests(employeeID string) ([]leaveapimodels.LeaveRequestView, error) {
	list, err := i.leaveStore.ListByEmployee(employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]leaveapimodels.LeaveRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModel())
	}
	return result, nil
}

func (i impl) PendingApprovals(approverID string) ([]leaveapimodels.LeaveRequestView, error) {
	list, err := i.leaveStore.ListPendingByApprover(approverID)
	if err != nil {
		return nil, err
	}
	result := make([]leaveapimodels.LeaveRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModel())
	}
	return result, nil
}

// ApprovalLogs - журнал решений по заявке, доступен ее автору
// и пользователям с правом решения
func (i impl) ApprovalLogs(leaveRequestID, callerID string) (leaveapimodels.ApprovalLogsResponse, error) {
	leave, err := i.leaveStore.GetByID(leaveRequestID)
	if err != nil {
		return leaveapimodels.ApprovalLogsResponse{}, err
	}
	if leave == nil {
		return leaveapimodels.ApprovalLogsResponse{}, models.ErrNotFound
	}
	caller, err := i.usersStore.GetByID(callerID)
	if err != nil {
		return leaveapimodels.ApprovalLogsResponse{}, err
	}
	if caller == nil {
		return leaveapimodels.ApprovalLogsResponse{}, models.ErrNotFound
	}
	if leave.EmployeeID != callerID && !caller.Role.CanDecide() {
		return leaveapimodels.ApprovalLogsResponse{}, models.ErrForbidden
	}

	logs := make([]leaveapimodels.ApprovalLogView, 0, len(leave.ApprovalLogs))
	names := map[string]string{}
	for _, rec := range leave.ApprovalLogs {
		view := rec.ToModel()
		name, exist := names[rec.ApproverID]
		if !exist {
			actor, err := i.usersStore.GetByID(rec.ApproverID)
			if err != nil {
				i.GetLogger(leaveRequestID).WithError(err).Error("ошибка получения данных согласующего для журнала")
			}
			if actor != nil {
				name = actor.FullName
			}
			names[rec.ApproverID] = name
		}
		view.ApproverName = name
		logs = append(logs, view)
	}
	return leaveapimodels.ApprovalLogsResponse{
		LeaveRequestID: leaveRequestID,
		CurrentStatus:  string(leave.Status),
		ActionTaken:    leave.ActionTaken,
		ApprovalLogs:   logs,
		TotalActions:   len(logs),
	}, nil
}

// GenerateActionToken - перевыпуск токена действия для вызывающего,
// служебная операция для руководителей и отдела кадров
func (i impl) GenerateActionToken(leaveRequestID, callerID string) (leaveapimodels.ActionTokenResponse, error) {
	caller, err := i.usersStore.GetByID(callerID)
	if err != nil {
		return leaveapimodels.ActionTokenResponse{}, err
	}
	if caller == nil {
		return leaveapimodels.ActionTokenResponse{}, models.ErrNotFound
	}
	if !caller.Role.CanDecide() {
		return leaveapimodels.ActionTokenResponse{}, models.ErrForbidden
	}
	leave, err := i.leaveStore.GetByID(leaveRequestID)
	if err != nil {
		return leaveapimodels.ActionTokenResponse{}, err
	}
	if leave == nil {
		return leaveapimodels.ActionTokenResponse{}, models.ErrNotFound
	}
	actionToken, err := i.tokens.Issue(leaveRequestID, callerID)
	if err != nil {
		return leaveapimodels.ActionTokenResponse{}, err
	}
	return leaveapimodels.ActionTokenResponse{
		LeaveRequestID: leaveRequestID,
		ActionToken:    actionToken,
		ExpiresInHours: i.tokens.TTLHours(),
		GeneratedFor:   caller.FullName,
	}, nil
}
