package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/growthkit/leadflow/internal/entity"
)

// Session holds conversation-scoped state shared by the workflows: the
// confirmed database target, approval records and in-flight send plans.
// Nothing here survives the session unless the host persists it.
type Session struct {
	ID string

	mu        sync.Mutex
	target    *entity.DatabaseTarget
	approvals map[string]string // approval id -> payload fingerprint
	plans     map[string]*entity.SendPlan
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		approvals: make(map[string]string),
		plans:     make(map[string]*entity.SendPlan),
	}
}

func (s *Session) DatabaseTarget() (*entity.DatabaseTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return nil, false
	}
	target := *s.target
	return &target, true
}

func (s *Session) ConfirmDatabaseTarget(target entity.DatabaseTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = &target
}

// RecordApproval registers an explicit approval for the exact payload and
// returns the approval id. Fingerprints tie the approval to what was shown.
func (s *Session) RecordApproval(payload any) (string, error) {
	fingerprint, err := Fingerprint(payload)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.approvals[id] = fingerprint
	s.mu.Unlock()
	return id, nil
}

// Approved reports whether the payload was approved as-is. Any change to the
// payload after approval invalidates it.
func (s *Session) Approved(approvalID string, payload any) bool {
	fingerprint, err := Fingerprint(payload)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	recorded, ok := s.approvals[approvalID]
	return ok && recorded == fingerprint
}

func (s *Session) RevokeApproval(approvalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.approvals, approvalID)
}

func (s *Session) PutPlan(plan *entity.SendPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
}

func (s *Session) Plan(planID string) (*entity.SendPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	return plan, ok
}

// DispatchedPlans returns non-terminal plans that already carry send ids,
// the set a background poller still has to finalize.
func (s *Session) DispatchedPlans() []*entity.SendPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.SendPlan
	for _, plan := range s.plans {
		if len(plan.SendIDs) > 0 && !plan.Terminal() {
			out = append(out, plan)
		}
	}
	return out
}

// PlanBySendID resolves a plan from one of its provider dispatch ids.
func (s *Session) PlanBySendID(sendID string) (*entity.SendPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, plan := range s.plans {
		for _, id := range plan.SendIDs {
			if id == sendID {
				return plan, true
			}
		}
	}
	return nil, false
}

// Fingerprint hashes a payload's canonical JSON form.
func Fingerprint(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// sessionClock is overridable in tests that assert freshness notes.
var sessionClock = time.Now
