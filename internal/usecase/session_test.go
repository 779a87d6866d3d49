package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/usecase"
)

func TestApprovalBoundToExactPayload(t *testing.T) {
	session := usecase.NewSession()

	payload := map[string]string{"subject": "Hi", "body": "b"}
	id, err := session.RecordApproval(payload)
	assert.NoError(t, err)

	assert.True(t, session.Approved(id, payload))

	drifted := map[string]string{"subject": "Hi!", "body": "b"}
	assert.False(t, session.Approved(id, drifted))

	assert.False(t, session.Approved("not-an-approval", payload))

	session.RevokeApproval(id)
	assert.False(t, session.Approved(id, payload))
}

func TestDatabaseTargetConfirmedOncePerSession(t *testing.T) {
	session := usecase.NewSession()

	_, ok := session.DatabaseTarget()
	assert.False(t, ok)

	session.ConfirmDatabaseTarget(entity.DatabaseTarget{ID: "db_1", Name: "Leads"})
	target, ok := session.DatabaseTarget()
	assert.True(t, ok)
	assert.Equal(t, "db_1", target.ID)
}

func TestPlanLookupBySendID(t *testing.T) {
	session := usecase.NewSession()

	plan, err := entity.NewSendPlan("me@co.com", []string{"a@b.com"}, "Hi", "b", entity.SendModeSingle)
	assert.NoError(t, err)
	plan.SendIDs = []string{"s1"}
	session.PutPlan(plan)

	found, ok := session.PlanBySendID("s1")
	assert.True(t, ok)
	assert.Equal(t, plan.ID, found.ID)

	_, ok = session.PlanBySendID("s2")
	assert.False(t, ok)
}
