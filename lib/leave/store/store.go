package leavestore

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"leave-tools-backend/models"
	dbmodels "leave-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.LeaveRequest) (id string, err error)
	GetByID(id string) (*dbmodels.LeaveRequest, error)
	ListByEmployee(employeeID string) ([]dbmodels.LeaveRequest, error)
	ListPendingByApprover(approverID string) ([]dbmodels.LeaveRequest, error)
	Update(id string, updMap map[string]interface{}) error
	ApplyDecision(id string, action models.DecisionAction, actorID, actorEmail, comments, verificationLevel string, origin models.OriginMeta) (*dbmodels.ApprovalLog, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.LeaveRequest) (id string, err error) {
	err = i.db.
		Omit("Employee", "Approver", "ApprovalLogs").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.LeaveRequest, error) {
	rec := dbmodels.LeaveRequest{}
	err := i.db.
		Where("id = ?", id).
		Preload("Employee").
		Preload("ApprovalLogs", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("approval_logs.created_at ASC")
		}).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListByEmployee(employeeID string) (list []dbmodels.LeaveRequest, err error) {
	list = []dbmodels.LeaveRequest{}
	err = i.db.
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) ListPendingByApprover(approverID string) (list []dbmodels.LeaveRequest, err error) {
	list = []dbmodels.LeaveRequest{}
	err = i.db.
		Where("approver_id = ?", approverID).
		Where("status = ?", models.LeavePendingStatus).
		Where("action_taken = ?", false).
		Order("created_at ASC").
		Preload("Employee").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.LeaveRequest{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

// ApplyDecision - атомарный перевод заявки в конечный статус.
// Условие action_taken = false в UPDATE гарантирует ровно одного победителя
// при одновременных решениях, в том числе между разными процессами сервиса.
// Запись журнала добавляется в той же транзакции, двойного добавления нет.
func (i impl) ApplyDecision(id string, action models.DecisionAction, actorID, actorEmail, comments, verificationLevel string, origin models.OriginMeta) (*dbmodels.ApprovalLog, error) {
	if !action.IsValid() {
		return nil, models.ErrInvalidAction
	}
	logRec := dbmodels.ApprovalLog{
		BaseModel: dbmodels.BaseModel{
			ID: uuid.New().String(),
		},
		LeaveRequestID:    id,
		Action:            action,
		ApproverID:        actorID,
		ApproverEmail:     actorEmail,
		Comments:          comments,
		IPAddress:         origin.IPAddress,
		UserAgent:         origin.UserAgent,
		VerificationLevel: verificationLevel,
	}
	now := time.Now().UTC()
	err := i.db.Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&dbmodels.LeaveRequest{}).
			Where("id = ?", id).
			Where("action_taken = ?", false).
			Updates(map[string]interface{}{
				"status":             action.ToStatus(),
				"action_taken":       true,
				"actual_approver_id": actorID,
				"action_timestamp":   now,
				"comments":           comments,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			err := tx.
				Where("id = ?", id).
				First(&dbmodels.LeaveRequest{}).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.ErrNotFound
				}
				return err
			}
			return models.ErrAlreadyActioned
		}
		return tx.Create(&logRec).Error
	})
	if err != nil {
		return nil, err
	}
	return &logRec, nil
}
