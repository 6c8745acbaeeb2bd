package approvalhandler

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"leave-tools-backend/lib/actiontoken"
	emailsender "leave-tools-backend/lib/email-sender"
	"leave-tools-backend/lib/utils/password"
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

// хранит заявки в памяти, повторяет контракт условного обновления:
// перевод в конечный статус выигрывает ровно один вызов
type fakeLeaveStore struct {
	mu   sync.Mutex
	recs map[string]*dbmodels.LeaveRequest
}

func (s *fakeLeaveStore) Create(rec dbmodels.LeaveRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()
	s.recs[rec.ID] = &rec
	return rec.ID, nil
}

func (s *fakeLeaveStore) GetByID(id string) (*dbmodels.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[id], nil
}

func (s *fakeLeaveStore) ListByEmployee(employeeID string) ([]dbmodels.LeaveRequest, error) {
	return nil, nil
}

func (s *fakeLeaveStore) ListPendingByApprover(approverID string) ([]dbmodels.LeaveRequest, error) {
	return nil, nil
}

func (s *fakeLeaveStore) Update(id string, updMap map[string]interface{}) error {
	return nil
}

func (s *fakeLeaveStore) ApplyDecision(id string, action models.DecisionAction, actorID, actorEmail, comments, verificationLevel string, origin models.OriginMeta) (*dbmodels.ApprovalLog, error) {
	if !action.IsValid() {
		return nil, models.ErrInvalidAction
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if rec.ActionTaken {
		return nil, models.ErrAlreadyActioned
	}
	now := time.Now().UTC()
	rec.Status = action.ToStatus()
	rec.ActionTaken = true
	rec.ActualApproverID = actorID
	rec.ActionTimestamp = &now
	rec.Comments = comments
	logRec := dbmodels.ApprovalLog{
		BaseModel: dbmodels.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
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
	rec.ApprovalLogs = append(rec.ApprovalLogs, logRec)
	return &logRec, nil
}

type fakeSender struct{}

func (s fakeSender) SendApprovalRequest(data emailsender.ApprovalEmailData) error {
	return nil
}

func (s fakeSender) SendDecisionNotification(data emailsender.DecisionEmailData) error {
	return nil
}

type testEnv struct {
	gateway    impl
	tokens     actiontoken.Provider
	leaveStore *fakeLeaveStore
	usersStore *fakeUsersStore
}

const testPassword = "secret-pass"

func newTestEnv(t *testing.T) *testEnv {
	hashed, err := password.Hash(testPassword)
	require.Nil(t, err)

	usersStore := &fakeUsersStore{recs: map[string]*dbmodels.User{
		"E1": {
			BaseModel: dbmodels.BaseModel{ID: "E1"},
			FullName:  "Петров Петр",
			Email:     "employee@example.com",
			Password:  hashed,
			Role:      models.EmployeeRole,
		},
		"M1": {
			BaseModel: dbmodels.BaseModel{ID: "M1"},
			FullName:  "Иванова Анна",
			Email:     "manager@example.com",
			Password:  hashed,
			Role:      models.ManagerRole,
		},
		"M2": {
			BaseModel: dbmodels.BaseModel{ID: "M2"},
			FullName:  "Сидоров Олег",
			Email:     "other-manager@example.com",
			Password:  hashed,
			Role:      models.ManagerRole,
		},
		"H1": {
			BaseModel: dbmodels.BaseModel{ID: "H1"},
			FullName:  "Кузнецова Мария",
			Email:     "hr@example.com",
			Password:  hashed,
			Role:      models.HRRole,
		},
	}}
	leaveStore := &fakeLeaveStore{recs: map[string]*dbmodels.LeaveRequest{}}
	tokens := actiontoken.NewInstance("test-base-secret", 48)
	return &testEnv{
		gateway: impl{
			leaveStore: leaveStore,
			usersStore: usersStore,
			tokens:     tokens,
			sender:     fakeSender{},
		},
		tokens:     tokens,
		leaveStore: leaveStore,
		usersStore: usersStore,
	}
}

func (e *testEnv) newPendingLeave(t *testing.T) string {
	id, err := e.leaveStore.Create(dbmodels.LeaveRequest{
		EmployeeID:    "E1",
		ApproverID:    "M1",
		ApproverEmail: "manager@example.com",
		LeaveType:     "annual",
		StartDate:     "2026-10-01",
		EndDate:       "2026-10-10",
		Reason:        "отпуск",
		Status:        models.LeavePendingStatus,
	})
	require.Nil(t, err)
	return id
}

func secureRequest(actionToken string, action models.DecisionAction) leaveapimodels.SecureDecisionRequest {
	return leaveapimodels.SecureDecisionRequest{
		ActionToken: actionToken,
		Password:    testPassword,
		Action:      string(action),
		Comments:    "комментарий",
	}
}

func TestSecureDecision(t *testing.T) {
	origin := models.OriginMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}

	t.Run(`designated approver approves check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		resp, err := env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionApprove), origin)
		require.Nil(t, err)
		require.Equal(t, false, resp.AlreadyProcessed)
		require.Equal(t, string(models.LeaveApprovedStatus), resp.Status)
		require.Equal(t, "Иванова Анна", resp.DecidedBy)
		require.NotEmpty(t, resp.LogID)
		require.Equal(t, models.VerificationSecureToken, resp.VerificationLevel)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, true, rec.ActionTaken)
		require.Equal(t, models.LeaveApprovedStatus, rec.Status)
		require.Equal(t, "M1", rec.ActualApproverID)
		require.Equal(t, 1, len(rec.ApprovalLogs))
		require.Equal(t, "10.0.0.1", rec.ApprovalLogs[0].IPAddress)
	})

	t.Run(`second decision is idempotent check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		first, err := env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionApprove), origin)
		require.Nil(t, err)
		require.Equal(t, false, first.AlreadyProcessed)

		// повторный клик по ссылке с противоположным действием
		second, err := env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionReject), origin)
		require.Nil(t, err)
		require.Equal(t, true, second.AlreadyProcessed)
		require.Equal(t, string(models.LeaveApprovedStatus), second.Status)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, models.LeaveApprovedStatus, rec.Status)
		require.Equal(t, 1, len(rec.ApprovalLogs))
	})

	t.Run(`wrong credential leaves request pending check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		payload := secureRequest(actionToken, models.DecisionApprove)
		payload.Password = "wrong-pass"
		_, err = env.gateway.SecureDecision(leaveID, payload, origin)
		require.ErrorIs(t, err, models.ErrUnauthorized)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, false, rec.ActionTaken)
		require.Equal(t, models.LeavePendingStatus, rec.Status)
		require.Equal(t, 0, len(rec.ApprovalLogs))
	})

	t.Run(`tampered token check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		tampered := actionToken[:len(actionToken)-2] + "zz"
		_, err = env.gateway.SecureDecision(leaveID, secureRequest(tampered, models.DecisionApprove), origin)
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run(`token issued for other leave check`, func(t *testing.T) {
		env := newTestEnv(t)
		firstID := env.newPendingLeave(t)
		secondID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(firstID, "M1")
		require.Nil(t, err)

		_, err = env.gateway.SecureDecision(secondID, secureRequest(actionToken, models.DecisionApprove), origin)
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run(`non-designated manager is forbidden check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M2")
		require.Nil(t, err)

		_, err = env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionReject), origin)
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run(`employee role is forbidden check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "E1")
		require.Nil(t, err)

		_, err = env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionApprove), origin)
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run(`hr override check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "H1")
		require.Nil(t, err)

		resp, err := env.gateway.SecureDecision(leaveID, secureRequest(actionToken, models.DecisionReject), origin)
		require.Nil(t, err)
		require.Equal(t, string(models.LeaveRejectedStatus), resp.Status)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, "H1", rec.ActualApproverID)
	})

	t.Run(`invalid action check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		payload := secureRequest(actionToken, models.DecisionApprove)
		payload.Action = "cancelled"
		_, err = env.gateway.SecureDecision(leaveID, payload, origin)
		require.ErrorIs(t, err, models.ErrInvalidAction)
	})

	t.Run(`unknown leave request check`, func(t *testing.T) {
		env := newTestEnv(t)
		actionToken, err := env.tokens.Issue("missing", "M1")
		require.Nil(t, err)

		_, err = env.gateway.SecureDecision("missing", secureRequest(actionToken, models.DecisionApprove), origin)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run(`concurrent decisions single winner check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)
		actionToken, err := env.tokens.Issue(leaveID, "M1")
		require.Nil(t, err)

		results := make([]leaveapimodels.DecisionResponse, 2)
		errs := make([]error, 2)
		actions := []models.DecisionAction{models.DecisionApprove, models.DecisionReject}
		wg := sync.WaitGroup{}
		for n := 0; n < 2; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				results[n], errs[n] = env.gateway.SecureDecision(leaveID, secureRequest(actionToken, actions[n]), origin)
			}(n)
		}
		wg.Wait()
		require.Nil(t, errs[0])
		require.Nil(t, errs[1])

		winners := 0
		for _, resp := range results {
			if !resp.AlreadyProcessed {
				winners++
			}
		}
		require.Equal(t, 1, winners)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, true, rec.Status.IsTerminal())
		require.Equal(t, 1, len(rec.ApprovalLogs))
	})
}

func TestPasswordDecision(t *testing.T) {
	origin := models.OriginMeta{IPAddress: "10.0.0.2", UserAgent: "test-agent"}

	t.Run(`designated approver rejects by password check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)

		resp, err := env.gateway.PasswordDecision(leaveID, models.DecisionReject,
			leaveapimodels.DecisionRequest{Password: testPassword, Comments: "нет замены"}, origin)
		require.Nil(t, err)
		require.Equal(t, string(models.LeaveRejectedStatus), resp.Status)
		require.Equal(t, models.VerificationPassword, resp.VerificationLevel)

		rec, _ := env.leaveStore.GetByID(leaveID)
		require.Equal(t, models.LeaveRejectedStatus, rec.Status)
		require.Equal(t, "нет замены", rec.Comments)
		require.Equal(t, models.VerificationPassword, rec.ApprovalLogs[0].VerificationLevel)
	})

	t.Run(`wrong password check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)

		_, err := env.gateway.PasswordDecision(leaveID, models.DecisionApprove,
			leaveapimodels.DecisionRequest{Password: "wrong"}, origin)
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run(`already actioned check`, func(t *testing.T) {
		env := newTestEnv(t)
		leaveID := env.newPendingLeave(t)

		_, err := env.gateway.PasswordDecision(leaveID, models.DecisionApprove,
			leaveapimodels.DecisionRequest{Password: testPassword}, origin)
		require.Nil(t, err)

		resp, err := env.gateway.PasswordDecision(leaveID, models.DecisionReject,
			leaveapimodels.DecisionRequest{Password: testPassword}, origin)
		require.Nil(t, err)
		require.Equal(t, true, resp.AlreadyProcessed)
		require.Equal(t, string(models.LeaveApprovedStatus), resp.Status)
	})
}
