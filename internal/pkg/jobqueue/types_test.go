package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doulando/ventre/internal/pkg/billing"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{"Failed job with retries remaining", &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}, true},
		{"Failed job out of retries", &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3}, false},
		{"Completed job", &Job{Status: JobStatusCompleted, RetryCount: 0, MaxRetries: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 3}
	before := time.Now()

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.False(t, job.UpdatedAt.Before(before))

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestBillingEventJobPayload_SurvivesRedisEncoding(t *testing.T) {
	installmentID := uuid.New()
	ev := billing.Event{
		Type:          billing.EventPaymentRecorded,
		BillingID:     uuid.New(),
		PatientID:     uuid.New(),
		ActorID:       uuid.New(),
		InstallmentID: &installmentID,
		Amount:        150075,
		Description:   "Acompanhamento pré-natal",
	}

	// Jobs are stored as JSON, so numbers come back as float64.
	raw, err := json.Marshal(NewBillingEventJobPayload(ev).ToMap())
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))

	payload, err := BillingEventJobPayloadFromMap(stored)
	require.NoError(t, err)
	got, err := payload.Event()
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestBillingEventJobPayload_WithoutInstallment(t *testing.T) {
	ev := billing.Event{
		Type:      billing.EventBillingCancelled,
		BillingID: uuid.New(),
		PatientID: uuid.New(),
		ActorID:   uuid.New(),
	}

	m := NewBillingEventJobPayload(ev).ToMap()
	assert.NotContains(t, m, "installment_id")

	payload, err := BillingEventJobPayloadFromMap(m)
	require.NoError(t, err)
	got, err := payload.Event()
	require.NoError(t, err)
	assert.Nil(t, got.InstallmentID)
}

func TestBillingEventJobPayload_RejectsMalformed(t *testing.T) {
	valid := NewBillingEventJobPayload(billing.Event{
		Type:      billing.EventBillingCreated,
		BillingID: uuid.New(),
		PatientID: uuid.New(),
		ActorID:   uuid.New(),
	})

	tests := []struct {
		name   string
		mutate func(p *BillingEventJobPayload)
	}{
		{"unknown type", func(p *BillingEventJobPayload) { p.EventType = "billing_deleted" }},
		{"bad billing id", func(p *BillingEventJobPayload) { p.BillingID = "nope" }},
		{"bad patient id", func(p *BillingEventJobPayload) { p.PatientID = "" }},
		{"bad actor id", func(p *BillingEventJobPayload) { p.ActorID = "123" }},
		{"bad installment id", func(p *BillingEventJobPayload) { p.InstallmentID = "x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := p.Event()
			assert.Error(t, err)
		})
	}
}
