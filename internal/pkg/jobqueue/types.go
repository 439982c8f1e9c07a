package jobqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doulando/ventre/internal/pkg/billing"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeBillingEvent JobType = "billing_event"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// BillingEventJobPayload carries a billing domain event through Redis.
// IDs travel as strings so the payload survives the map round trip.
type BillingEventJobPayload struct {
	EventType     string `json:"event_type"`
	BillingID     string `json:"billing_id"`
	PatientID     string `json:"patient_id"`
	ActorID       string `json:"actor_id"`
	InstallmentID string `json:"installment_id,omitempty"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
}

// NewBillingEventJobPayload flattens an event for enqueueing.
func NewBillingEventJobPayload(ev billing.Event) BillingEventJobPayload {
	p := BillingEventJobPayload{
		EventType:   string(ev.Type),
		BillingID:   ev.BillingID.String(),
		PatientID:   ev.PatientID.String(),
		ActorID:     ev.ActorID.String(),
		Amount:      ev.Amount,
		Description: ev.Description,
	}
	if ev.InstallmentID != nil {
		p.InstallmentID = ev.InstallmentID.String()
	}
	return p
}

// ToMap converts the payload to a map for storage
func (p BillingEventJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"event_type":  p.EventType,
		"billing_id":  p.BillingID,
		"patient_id":  p.PatientID,
		"actor_id":    p.ActorID,
		"amount":      p.Amount,
		"description": p.Description,
	}
	if p.InstallmentID != "" {
		m["installment_id"] = p.InstallmentID
	}
	return m
}

// BillingEventJobPayloadFromMap creates a payload from a map
func BillingEventJobPayloadFromMap(data map[string]interface{}) (*BillingEventJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload BillingEventJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// Event rebuilds the billing event, rejecting malformed IDs.
func (p BillingEventJobPayload) Event() (billing.Event, error) {
	ev := billing.Event{
		Type:        billing.EventType(p.EventType),
		Amount:      p.Amount,
		Description: p.Description,
	}
	switch ev.Type {
	case billing.EventBillingCreated, billing.EventPaymentRecorded, billing.EventBillingCancelled:
	default:
		return ev, fmt.Errorf("unknown billing event type %q", p.EventType)
	}

	var err error
	if ev.BillingID, err = uuid.Parse(p.BillingID); err != nil {
		return ev, fmt.Errorf("billing_id: %w", err)
	}
	if ev.PatientID, err = uuid.Parse(p.PatientID); err != nil {
		return ev, fmt.Errorf("patient_id: %w", err)
	}
	if ev.ActorID, err = uuid.Parse(p.ActorID); err != nil {
		return ev, fmt.Errorf("actor_id: %w", err)
	}
	if p.InstallmentID != "" {
		id, err := uuid.Parse(p.InstallmentID)
		if err != nil {
			return ev, fmt.Errorf("installment_id: %w", err)
		}
		ev.InstallmentID = &id
	}
	return ev, nil
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
