package leavehandler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"leave-tools-backend/lib/actiontoken"
	emailsender "leave-tools-backend/lib/email-sender"
	"leave-tools-backend/models"
	leaveapimodels "leave-tools-backend/models/api/leave"
	dbmodels "leave-tools-backend/models/db"
)

type fakeUsersStore struct {
	recs map[string]*dbmodels.User
}

func (s *fakeUsersStore) Create(rec dbmodels.User) (string, error) {
	s.recs[rec.ID] = &rec
	return rec.ID, nil
}

func (s *fakeUsersStore) GetByID(id string) (*dbmodels.User, error) {
	return s.recs[id], nil
}

func (s *fakeUsersStore) FindByEmail(email string) (*dbmodels.User, error) {
	for _, rec := range s.recs {
		if rec.Email == email {
			return rec, nil
		}
	}
	return nil, nil
}

func (s *fakeUsersStore) ExistByEmail(email string) (bool, error) {
	rec, _ := s.FindByEmail(email)
	return rec != nil, nil
}

func (s *fakeUsersStore) Update(id string, updMap map[string]interface{}) error {
	return nil
}

func (s *fakeUsersStore) SetLastLogin(id string, moment time.Time) error {
	return nil
}

type fakeLeaveStore struct {
	recs    map[string]*dbmodels.LeaveRequest
	updates map[string]map[string]interface{}
}

func (s *fakeLeaveStore) Create(rec dbmodels.LeaveRequest) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()
	s.recs[rec.ID] = &rec
	return rec.ID, nil
}

func (s *fakeLeaveStore) GetByID(id string) (*dbmodels.LeaveRequest, error) {
	return s.recs[id], nil
}

func (s *fakeLeaveStore) ListByEmployee(employeeID string) ([]dbmodels.LeaveRequest, error) {
	list := []dbmodels.LeaveRequest{}
	for _, rec := range s.recs {
		if rec.EmployeeID == employeeID {
			list = append(list, *rec)
		}
	}
	return list, nil
}

func (s *fakeLeaveStore) ListPendingByApprover(approverID string) ([]dbmodels.LeaveRequest, error) {
	list := []dbmodels.LeaveRequest{}
	for _, rec := range s.recs {
		if rec.ApproverID == approverID && rec.Status == models.LeavePendingStatus && !rec.ActionTaken {
			list = append(list, *rec)
		}
	}
	return list, nil
}

func (s *fakeLeaveStore) Update(id string, updMap map[string]interface{}) error {
	s.updates[id] = updMap
	return nil
}

func (s *fakeLeaveStore) ApplyDecision(id string, action models.DecisionAction, actorID, actorEmail, comments, verificationLevel string, origin models.OriginMeta) (*dbmodels.ApprovalLog, error) {
	return nil, errors.New("не используется в этих тестах")
}

type fakeSender struct {
	lastApproval *emailsender.ApprovalEmailData
	sendErr      error
}

func (s *fakeSender) SendApprovalRequest(data emailsender.ApprovalEmailData) error {
	s.lastApproval = &data
	return s.sendErr
}

func (s *fakeSender) SendDecisionNotification(data emailsender.DecisionEmailData) error {
	return nil
}

type testEnv struct {
	handler    impl
	tokens     actiontoken.Provider
	leaveStore *fakeLeaveStore
	usersStore *fakeUsersStore
	sender     *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	usersStore := &fakeUsersStore{recs: map[string]*dbmodels.User{
		"E1": {
			BaseModel: dbmodels.BaseModel{ID: "E1"},
			FullName:  "Петров Петр",
			Email:     "employee@example.com",
			Role:      models.EmployeeRole,
		},
		"E2": {
			BaseModel: dbmodels.BaseModel{ID: "E2"},
			FullName:  "Смирнов Игорь",
			Email:     "other-employee@example.com",
			Role:      models.EmployeeRole,
		},
		"M1": {
			BaseModel: dbmodels.BaseModel{ID: "M1"},
			FullName:  "Иванова Анна",
			Email:     "manager@example.com",
			Role:      models.ManagerRole,
		},
	}}
	leaveStore := &fakeLeaveStore{
		recs:    map[string]*dbmodels.LeaveRequest{},
		updates: map[string]map[string]interface{}{},
	}
	sender := &fakeSender{}
	tokens := actiontoken.NewInstance("test-base-secret", 48)
	return &testEnv{
		handler: impl{
			leaveStore: leaveStore,
			usersStore: usersStore,
			tokens:     tokens,
			sender:     sender,
		},
		tokens:     tokens,
		leaveStore: leaveStore,
		usersStore: usersStore,
		sender:     sender,
	}
}

func submitData(leaveType string) leaveapimodels.LeaveRequestData {
	return leaveapimodels.LeaveRequestData{
		StartDate:     "2026-10-01",
		EndDate:       "2026-10-10",
		LeaveType:     leaveType,
		Reason:        "семейные обстоятельства",
		ApproverEmail: "manager@example.com",
	}
}

func TestSubmit(t *testing.T) {
	t.Run(`submit creates pending request check`, func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.handler.Submit("E1", submitData("annual"))
		require.Nil(t, err)
		require.NotEmpty(t, resp.LeaveRequestID)
		require.Equal(t, string(models.LeavePendingStatus), resp.Status)

		rec, _ := env.leaveStore.GetByID(resp.LeaveRequestID)
		require.NotNil(t, rec)
		require.Equal(t, "E1", rec.EmployeeID)
		require.Equal(t, "M1", rec.ApproverID)
		require.Equal(t, "manager@example.com", rec.ApproverEmail)
		require.Equal(t, models.LeavePendingStatus, rec.Status)
		require.Equal(t, false, rec.RequiresHRApproval)
		require.Equal(t, true, rec.CanTransition())
	})

	t.Run(`medical leave requires hr approval check`, func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.handler.Submit("E1", submitData("medical"))
		require.Nil(t, err)

		rec, _ := env.leaveStore.GetByID(resp.LeaveRequestID)
		require.Equal(t, true, rec.RequiresHRApproval)
	})

	t.Run(`action token issued and persisted check`, func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.handler.Submit("E1", submitData("annual"))
		require.Nil(t, err)

		updMap := env.leaveStore.updates[resp.LeaveRequestID]
		require.NotNil(t, updMap)
		stored, ok := updMap["security_token"].(string)
		require.Equal(t, true, ok)
		require.NotEmpty(t, stored)

		// письмо согласующему несет тот же токен, и он проходит проверку
		require.NotNil(t, env.sender.lastApproval)
		require.Equal(t, stored, env.sender.lastApproval.ActionToken)
		require.Equal(t, "manager@example.com", env.sender.lastApproval.ApproverEmail)

		claims, err := env.tokens.Verify(stored, resp.LeaveRequestID)
		require.Nil(t, err)
		require.Equal(t, "M1", claims.ApproverID)
		require.Equal(t, actiontoken.ActionTypeLeaveApproval, claims.ActionType)
	})

	t.Run(`unknown approver email check`, func(t *testing.T) {
		env := newTestEnv(t)
		data := submitData("annual")
		data.ApproverEmail = "nobody@example.com"
		_, err := env.handler.Submit("E1", data)
		require.ErrorIs(t, err, models.ErrNotFound)
		require.Equal(t, 0, len(env.leaveStore.recs))
	})

	t.Run(`unknown employee check`, func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Submit("missing", submitData("annual"))
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run(`email failure does not cancel submit check`, func(t *testing.T) {
		env := newTestEnv(t)
		env.sender.sendErr = errors.New("smtp недоступен")
		resp, err := env.handler.Submit("E1", submitData("annual"))
		require.Nil(t, err)
		require.NotEmpty(t, resp.LeaveRequestID)
	})
}

func TestApprovalLogs(t *testing.T) {
	newLeaveWithLog := func(t *testing.T, env *testEnv) string {
		id, err := env.leaveStore.Create(dbmodels.LeaveRequest{
			EmployeeID:    "E1",
			ApproverID:    "M1",
			ApproverEmail: "manager@example.com",
			LeaveType:     "annual",
			Status:        models.LeaveApprovedStatus,
			ActionTaken:   true,
		})
		require.Nil(t, err)
		rec := env.leaveStore.recs[id]
		rec.ApprovalLogs = []dbmodels.ApprovalLog{{
			BaseModel: dbmodels.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: time.Now().UTC(),
			},
			LeaveRequestID:    id,
			Action:            models.DecisionApprove,
			ApproverID:        "M1",
			ApproverEmail:     "manager@example.com",
			VerificationLevel: models.VerificationSecureToken,
		}}
		return id
	}

	t.Run(`owner reads own logs check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := newLeaveWithLog(t, env)

		resp, err := env.handler.ApprovalLogs(leaveID, "E1")
		require.Nil(t, err)
		require.Equal(t, string(models.LeaveApprovedStatus), resp.CurrentStatus)
		require.Equal(t, true, resp.ActionTaken)
		require.Equal(t, 1, resp.TotalActions)
		require.Equal(t, "Иванова Анна", resp.ApprovalLogs[0].ApproverName)
		require.Equal(t, models.VerificationSecureToken, resp.ApprovalLogs[0].VerificationLevel)
	})

	t.Run(`manager reads any logs check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := newLeaveWithLog(t, env)

		_, err := env.handler.ApprovalLogs(leaveID, "M1")
		require.Nil(t, err)
	})

	t.Run(`other employee is forbidden check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := newLeaveWithLog(t, env)

		_, err := env.handler.ApprovalLogs(leaveID, "E2")
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run(`unknown leave request check`, func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.ApprovalLogs("missing", "E1")
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestGenerateActionToken(t *testing.T) {
	t.Run(`manager gets verifiable token check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID, err := env.leaveStore.Create(dbmodels.LeaveRequest{
			EmployeeID: "E1",
			ApproverID: "M1",
			Status:     models.LeavePendingStatus,
		})
		require.Nil(t, err)

		resp, err := env.handler.GenerateActionToken(leaveID, "M1")
		require.Nil(t, err)
		require.Equal(t, leaveID, resp.LeaveRequestID)
		require.Equal(t, 48, resp.ExpiresInHours)
		require.Equal(t, "Иванова Анна", resp.GeneratedFor)

		claims, err := env.tokens.Verify(resp.ActionToken, leaveID)
		require.Nil(t, err)
		require.Equal(t, "M1", claims.ApproverID)
	})

	t.Run(`employee role is forbidden check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID, err := env.leaveStore.Create(dbmodels.LeaveRequest{
			EmployeeID: "E1",
			ApproverID: "M1",
			Status:     models.LeavePendingStatus,
		})
		require.Nil(t, err)

		_, err = env.handler.GenerateActionToken(leaveID, "E1")
		require.ErrorIs(t, err, models.ErrForbidden)
	})
}
