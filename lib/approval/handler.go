package approvalhandler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"leave-tools-backend/db"
	"leave-tools-backend/lib/actiontoken"
	emailsender "leave-tools-backend/lib/email-sender"
	leavestore "leave-tools-backend/lib/leave/store"
	usersstore "leave-tools-backend/lib/users/store"
	"leave-tools-backend/lib/utils/password"
	"leave-tools-backend/models"
	leaveapimodels "leave-tools-backend/models/api/leave"
	dbmodels "leave-tools-backend/models/db"
)

type Provider interface {
	SecureDecision(leaveRequestID string, data leaveapimodels.SecureDecisionRequest, origin models.OriginMeta) (leaveapimodels.DecisionResponse, error)
	PasswordDecision(leaveRequestID string, action models.DecisionAction, data leaveapimodels.DecisionRequest, origin models.OriginMeta) (leaveapimodels.DecisionResponse, error)
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

// SecureDecision - решение по токену действия из письма, без сессии.
// Конкретная причина отказа токена не раскрывается вызывающей стороне,
// наружу уходит единый ответ Unauthorized.
func (i impl) SecureDecision(leaveRequestID string, data leaveapimodels.SecureDecisionRequest, origin models.OriginMeta) (leaveapimodels.DecisionResponse, error) {
	logger := i.GetLogger(leaveRequestID)

	leave, err := i.leaveStore.GetByID(leaveRequestID)
	if err != nil {
		return leaveapimodels.DecisionResponse{}, err
	}
	if leave == nil {
		return leaveapimodels.DecisionResponse{}, models.ErrNotFound
	}

	claims, err := i.tokens.Verify(data.ActionToken, leaveRequestID)
	if err != nil {
		if actiontoken.IsTokenError(err) {
			logger.WithError(err).Debug("токен действия не прошел проверку")
			return leaveapimodels.DecisionResponse{}, models.ErrUnauthorized
		}
		return leaveapimodels.DecisionResponse{}, err
	}

	approver, err := i.usersStore.GetByID(claims.ApproverID)
	if err != nil {
		return leaveapimodels.DecisionResponse{}, err
	}
	if approver == nil {
		return leaveapimodels.DecisionResponse{}, models.ErrNotFound
	}
	if !password.Verify(data.Password, approver.Password) {
		logger.WithField("approver_id", approver.ID).Debug("согласующий не прошел проверку пароля")
		return leaveapimodels.DecisionResponse{}, models.ErrUnauthorized
	}
	if err = i.checkEntitled(leave, approver); err != nil {
		return leaveapimodels.DecisionResponse{}, err
	}

	return i.applyDecision(leave, models.DecisionAction(data.Action), approver, data.Comments, models.VerificationSecureToken, origin)
}

// PasswordDecision - решение назначенного согласующего только по паролю,
// путь обычных кнопок approve/reject без токена действия
func (i impl) PasswordDecision(leaveRequestID string, action models.DecisionAction, data leaveapimodels.DecisionRequest, origin models.OriginMeta) (leaveapimodels.DecisionResponse, error) {
	logger := i.GetLogger(leaveRequestID)

	leave, err := i.leaveStore.GetByID(leaveRequestID)
	if err != nil {
		return leaveapimodels.DecisionResponse{}, err
	}
	if leave == nil {
		return leaveapimodels.DecisionResponse{}, models.ErrNotFound
	}
	approver, err := i.usersStore.GetByID(leave.ApproverID)
	if err != nil {
		return leaveapimodels.DecisionResponse{}, err
	}
	if approver == nil {
		return leaveapimodels.DecisionResponse{}, models.ErrNotFound
	}
	if !password.Verify(data.Password, approver.Password) {
		logger.WithField("approver_id", approver.ID).Debug("согласующий не прошел проверку пароля")
		return leaveapimodels.DecisionResponse{}, models.ErrUnauthorized
	}

	return i.applyDecision(leave, action, approver, data.Comments, models.VerificationPassword, origin)
}

// назначенный согласующий сверяется по почте, отдел кадров может принять
// решение по любой заявке
func (i impl) checkEntitled(leave *dbmodels.LeaveRequest, approver *dbmodels.User) error {
	if !approver.Role.CanDecide() {
		return models.ErrForbidden
	}
	if leave.ApproverEmail != approver.Email && !approver.Role.IsHR() {
		return models.ErrForbidden
	}
	return nil
}

func (i impl) applyDecision(leave *dbmodels.LeaveRequest, action models.DecisionAction, approver *dbmodels.User, comments, verificationLevel string, origin models.OriginMeta) (leaveapimodels.DecisionResponse, error) {
	logger := i.GetLogger(leave.ID)
	if !action.IsValid() {
		return leaveapimodels.DecisionResponse{}, models.ErrInvalidAction
	}

	logRec, err := i.leaveStore.ApplyDecision(leave.ID, action, approver.ID, approver.Email, comments, verificationLevel, origin)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyActioned) {
			// два клика по одной ссылке - штатная гонка, отдаем текущее
			// конечное состояние без ошибки
			current, err := i.leaveStore.GetByID(leave.ID)
			if err != nil {
				return leaveapimodels.DecisionResponse{}, err
			}
			if current == nil {
				return leaveapimodels.DecisionResponse{}, models.ErrNotFound
			}
			return leaveapimodels.DecisionResponse{
				LeaveRequestID:   current.ID,
				Status:           string(current.Status),
				AlreadyProcessed: true,
			}, nil
		}
		return leaveapimodels.DecisionResponse{}, err
	}

	i.notifyEmployee(leave, action, comments)

	logger.
		WithField("approver_id", approver.ID).
		WithField("action", string(action)).
		Info("по заявке принято решение")
	return leaveapimodels.DecisionResponse{
		LeaveRequestID:    leave.ID,
		Status:            string(action.ToStatus()),
		DecidedBy:         approver.FullName,
		LogID:             logRec.ID,
		ActionTimestamp:   &logRec.CreatedAt,
		VerificationLevel: verificationLevel,
	}, nil
}

func (i impl) notifyEmployee(leave *dbmodels.LeaveRequest, action models.DecisionAction, comments string) {
	logger := i.GetLogger(leave.ID)
	employee, err := i.usersStore.GetByID(leave.EmployeeID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения данных сотрудника для уведомления")
		return
	}
	if employee == nil {
		return
	}
	err = i.sender.SendDecisionNotification(emailsender.DecisionEmailData{
		EmployeeEmail: employee.Email,
		EmployeeName:  employee.FullName,
		LeaveType:     leave.LeaveType,
		StartDate:     leave.StartDate,
		EndDate:       leave.EndDate,
		Action:        action,
		Comments:      comments,
	})
	if err != nil {
		logger.WithError(err).Error("ошибка отправки уведомления сотруднику")
	}
}
