package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePayloadRoundTrip(t *testing.T) {
	msg, err := NewMessage("job-1", TypeWorkflowJob, "acc-1", WorkflowJobMessage{JobID: "job-1", AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, TypeWorkflowJob, msg.Type)
	assert.Equal(t, "acc-1", msg.AccountID)

	var payload WorkflowJobMessage
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "job-1", payload.JobID)
}

func TestMessageMetadata(t *testing.T) {
	msg, err := NewMessage("id", TypeNotification, "", NotificationMessage{Email: "a@b.c"})
	require.NoError(t, err)

	assert.Empty(t, msg.GetMetadata("request_id"))
	msg.SetMetadata("request_id", "req-1")
	assert.Equal(t, "req-1", msg.GetMetadata("request_id"))
}

func TestDLQStreamName(t *testing.T) {
	assert.Equal(t, "dlq:stream:workflow:jobs", StreamWorkflowJobs.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	// 封顶于 Max
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(10))
}
