package emailsender

import (
	"fmt"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"leave-tools-backend/lib/smtp"
	"leave-tools-backend/models"
)

type ApprovalEmailData struct {
	LeaveRequestID string
	EmployeeName   string
	Department     string
	LeaveType      string
	StartDate      string
	EndDate        string
	Reason         string
	ApproverEmail  string
	ActionToken    string
}

type DecisionEmailData struct {
	EmployeeEmail string
	EmployeeName  string
	LeaveType     string
	StartDate     string
	EndDate       string
	Action        models.DecisionAction
	Comments      string
}

type Provider interface {
	SendApprovalRequest(data ApprovalEmailData) error
	SendDecisionNotification(data DecisionEmailData) error
}

var Instance Provider

func NewInstance(host, port, user, password, emailFrom, linkDomain string) Provider {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		portNum = 0
	}
	return &impl{
		host:       host,
		port:       portNum,
		user:       user,
		password:   password,
		emailFrom:  emailFrom,
		linkDomain: linkDomain,
	}
}

type impl struct {
	host       string
	port       int
	user       string
	password   string
	emailFrom  string
	linkDomain string
}

// SendApprovalRequest - письмо согласующему со ссылками решения,
// токен действия вшит в ссылки и не требует входа в систему
func (i impl) SendApprovalRequest(data ApprovalEmailData) error {
	logger := log.
		WithField("leave_request_id", data.LeaveRequestID).
		WithField("approver_email", data.ApproverEmail)
	if i.host == "" || i.port == 0 {
		logger.Warn("Письмо согласующему не отправлено, тк не настроен smtp клиент")
		return nil
	}

	approveLink := i.decisionLink(data.LeaveRequestID, models.DecisionApprove, data.ActionToken)
	rejectLink := i.decisionLink(data.LeaveRequestID, models.DecisionReject, data.ActionToken)

	body := fmt.Sprintf(`<html><body>
<h3>Заявка на отпуск</h3>
<p>Сотрудник: %s (%s)</p>
<p>Тип отпуска: %s</p>
<p>Период: %s — %s</p>
<p>Причина: %s</p>
<p>
  <a href="%s" style="padding:10px 20px;background:#2e7d32;color:#fff;text-decoration:none;">Согласовать</a>
  &nbsp;
  <a href="%s" style="padding:10px 20px;background:#c62828;color:#fff;text-decoration:none;">Отклонить</a>
</p>
<p>Ссылки действуют ограниченное время и привязаны к этой заявке.</p>
</body></html>`,
		data.EmployeeName, data.Department, data.LeaveType, data.StartDate, data.EndDate, data.Reason,
		approveLink, rejectLink)

	msg := gomail.NewMessage()
	msg.SetHeader("From", i.emailFrom)
	msg.SetHeader("To", data.ApproverEmail)
	msg.SetHeader("Subject", "Leave Tools - Заявка на отпуск ожидает решения")
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(i.host, i.port, i.user, i.password)
	if err := dialer.DialAndSend(msg); err != nil {
		logger.WithError(err).Error("Ошибка отправки письма согласующему")
		return err
	}
	logger.Info("письмо согласующему отправлено")
	return nil
}

func (i impl) SendDecisionNotification(data DecisionEmailData) error {
	message := fmt.Sprintf("Ваша заявка на отпуск (%s, %s — %s) %s.",
		data.LeaveType, data.StartDate, data.EndDate, data.Action.ToHuman())
	if data.Comments != "" {
		message = fmt.Sprintf("%s Комментарий: %s", message, data.Comments)
	}
	return smtp.Instance.SendEMail(i.emailFrom, data.EmployeeEmail, message, "Решение по заявке на отпуск")
}

func (i impl) decisionLink(leaveRequestID string, action models.DecisionAction, actionToken string) string {
	return fmt.Sprintf("%s/leave/%s/decision?action=%s&token=%s",
		i.linkDomain, leaveRequestID, action, url.QueryEscape(actionToken))
}
