package actiontoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const ActionTypeLeaveApproval = "leave_approval"

const saltBytesLen = 16

// ActionClaims - проверенное содержимое токена действия
type ActionClaims struct {
	LeaveRequestID string
	ApproverID     string
	ActionType     string
	IssuedAt       string
	Salt           string
}

type Provider interface {
	Issue(leaveRequestID, approverID string) (string, error)
	Verify(actionToken, expectedLeaveRequestID string) (ActionClaims, error)
	TTLHours() int
}

var Instance Provider

// NewInstance - базовый секрет и срок жизни задаются конфигурацией,
// внутри логики глобальное состояние не читается
func NewInstance(baseSecret string, ttlHours int) Provider {
	return &impl{
		baseSecret: baseSecret,
		ttl:        time.Duration(ttlHours) * time.Hour,
	}
}

type impl struct {
	baseSecret string
	ttl        time.Duration
}

func (i impl) TTLHours() int {
	return int(i.ttl / time.Hour)
}

// Issue - выпускает токен действия, привязанный к заявке и согласующему.
// Ключ подписи = базовый секрет + случайная соль, поэтому каждый токен
// фактически подписан уникальным ключом. К подписанному токену добавляется
// хеш целостности от (токен + ид заявки).
func (i impl) Issue(leaveRequestID, approverID string) (string, error) {
	saltRaw := make([]byte, saltBytesLen)
	if _, err := rand.Read(saltRaw); err != nil {
		return "", errors.Wrap(err, "ошибка генерации соли токена")
	}
	salt := hex.EncodeToString(saltRaw)

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"leave_request_id": leaveRequestID,
		"approver_id":      approverID,
		"action_type":      ActionTypeLeaveApproval,
		"timestamp":        now.Format(time.RFC3339),
		"salt":             salt,
	}
	signed, err := Encode(claims, now.Add(i.ttl), i.baseSecret+salt)
	if err != nil {
		return "", err
	}
	return signed + "." + integrityHash(signed, leaveRequestID), nil
}

// Verify - полная проверка предъявленного токена действия.
// Ид заявки берется из запроса вызывающей стороны, а не из самого токена:
// хеш целостности пересчитывается от него, поэтому токен, выпущенный для
// одной заявки, нельзя предъявить к другой.
func (i impl) Verify(actionToken, expectedLeaveRequestID string) (ActionClaims, error) {
	// подписанный токен сам содержит разделитель, поэтому режем по последнему
	idx := strings.LastIndex(actionToken, ".")
	if idx <= 0 || idx == len(actionToken)-1 {
		return ActionClaims{}, ErrMalformedToken
	}
	signed := actionToken[:idx]
	providedHash := actionToken[idx+1:]

	// проверка хеша до проверки подписи, сравнение за константное время
	expectedHash := integrityHash(signed, expectedLeaveRequestID)
	if subtle.ConstantTimeCompare([]byte(providedHash), []byte(expectedHash)) != 1 {
		return ActionClaims{}, ErrIntegrityMismatch
	}

	unverified, err := PeekUnverifiedClaims(signed)
	if err != nil {
		return ActionClaims{}, err
	}
	salt, ok := unverified["salt"].(string)
	if !ok || salt == "" {
		return ActionClaims{}, ErrMalformedToken
	}

	claims, err := Decode(signed, i.baseSecret+salt)
	if err != nil {
		return ActionClaims{}, err
	}

	result := claimsToAction(claims)
	if result.LeaveRequestID != expectedLeaveRequestID {
		return ActionClaims{}, ErrLeaveMismatch
	}
	return result, nil
}

func integrityHash(signedToken, leaveRequestID string) string {
	sum := sha256.Sum256([]byte(signedToken + leaveRequestID))
	return hex.EncodeToString(sum[:])
}

func claimsToAction(claims jwt.MapClaims) ActionClaims {
	result := ActionClaims{}
	if v, ok := claims["leave_request_id"].(string); ok {
		result.LeaveRequestID = v
	}
	if v, ok := claims["approver_id"].(string); ok {
		result.ApproverID = v
	}
	if v, ok := claims["action_type"].(string); ok {
		result.ActionType = v
	}
	if v, ok := claims["timestamp"].(string); ok {
		result.IssuedAt = v
	}
	if v, ok := claims["salt"].(string); ok {
		result.Salt = v
	}
	return result
}
