package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doulando/ventre/app/models"
)

// memoryRepository is an in-memory Repository for service tests.
type memoryRepository struct {
	mu           sync.Mutex
	billings     map[uuid.UUID]models.Billing
	installments map[uuid.UUID]models.Installment
	payments     []models.Payment
	lastFilter   BillingFilter
	locks        []string
	createErr    error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		billings:     map[uuid.UUID]models.Billing{},
		installments: map[uuid.UUID]models.Installment{},
	}
}

func (r *memoryRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return fn(r)
}

func (r *memoryRepository) CreateBilling(ctx context.Context, billing *models.Billing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	stored := *billing
	stored.Installments = nil
	r.billings[billing.ID] = stored
	for _, inst := range billing.Installments {
		r.installments[inst.ID] = inst
	}
	return nil
}

func (r *memoryRepository) GetBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.billings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Installments = r.installmentsOf(id)
	return &b, nil
}

func (r *memoryRepository) LockBilling(ctx context.Context, id uuid.UUID) (*models.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = append(r.locks, "billing:"+id.String())
	b, ok := r.billings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryRepository) ListBillings(ctx context.Context, viewerID uuid.UUID, filter BillingFilter) ([]models.Billing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []models.Billing
	for _, b := range r.billings {
		if b.ProfessionalID != viewerID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepository) UpdateBillingStatus(ctx context.Context, id uuid.UUID, status models.BillingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.billings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	r.billings[id] = b
	return nil
}

func (r *memoryRepository) UpdateBillingTotals(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.billings[id]
	b.PaidAmount = paidAmount
	b.Status = status
	r.billings[id] = b
	return nil
}

func (r *memoryRepository) SummaryByProfessional(ctx context.Context, professionalID uuid.UUID) ([]StatusTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := map[models.BillingStatus]*StatusTotal{}
	for _, b := range r.billings {
		if b.ProfessionalID != professionalID {
			continue
		}
		row, ok := byStatus[b.Status]
		if !ok {
			row = &StatusTotal{Status: b.Status}
			byStatus[b.Status] = row
		}
		row.Count++
		row.TotalAmount += b.TotalAmount
		row.PaidAmount += b.PaidAmount
	}
	var out []StatusTotal
	for _, row := range byStatus {
		out = append(out, *row)
	}
	return out, nil
}

func (r *memoryRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.installments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inst, nil
}

func (r *memoryRepository) LockInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	r.mu.Lock()
	r.locks = append(r.locks, "installment:"+id.String())
	r.mu.Unlock()
	return r.GetInstallment(ctx, id)
}

func (r *memoryRepository) ListInstallments(ctx context.Context, billingID uuid.UUID) ([]models.Installment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = append(r.locks, "list:"+billingID.String())
	return r.installmentsOf(billingID), nil
}

func (r *memoryRepository) installmentsOf(billingID uuid.UUID) []models.Installment {
	var out []models.Installment
	for _, inst := range r.installments {
		if inst.BillingID == billingID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out
}

func (r *memoryRepository) UpdateInstallmentPayment(ctx context.Context, id uuid.UUID, paidAmount int64, status models.BillingStatus, method models.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst := r.installments[id]
	inst.PaidAmount = paidAmount
	inst.Status = status
	inst.PaymentMethod = &method
	r.installments[id] = inst
	return nil
}

func (r *memoryRepository) MarkOverdue(ctx context.Context, today time.Time) ([]uuid.UUID, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	var marked int64
	for id, inst := range r.installments {
		if inst.Status != models.BillingStatusPendente || !inst.DueDate.Before(today) {
			continue
		}
		inst.Status = models.BillingStatusAtrasado
		r.installments[id] = inst
		marked++
		if !seen[inst.BillingID] {
			seen[inst.BillingID] = true
			ids = append(ids, inst.BillingID)
		}
	}
	return ids, marked, nil
}

func (r *memoryRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *memoryRepository) SumPayments(ctx context.Context, installmentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.payments {
		if p.InstallmentID == installmentID {
			sum += p.PaidAmount
		}
	}
	return sum, nil
}

func (r *memoryRepository) ListPayments(ctx context.Context, installmentID uuid.UUID) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].InstallmentID == installmentID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}

func (r *memoryRepository) setInstallmentStatus(id uuid.UUID, status models.BillingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst := r.installments[id]
	inst.Status = status
	r.installments[id] = inst
}

type stubAccess struct {
	grants map[uuid.UUID]map[uuid.UUID]models.PatientAccess
}

func (a *stubAccess) grant(patientID, userID uuid.UUID, access models.PatientAccess) {
	if a.grants[patientID] == nil {
		a.grants[patientID] = map[uuid.UUID]models.PatientAccess{}
	}
	a.grants[patientID][userID] = access
}

func (a *stubAccess) PatientAccess(ctx context.Context, patientID, userID uuid.UUID) (models.PatientAccess, error) {
	users, ok := a.grants[patientID]
	if !ok {
		return models.AccessNone, ErrNotFound
	}
	return users[userID], nil
}

type recordingReminders struct {
	mu        sync.Mutex
	scheduled []uuid.UUID
	cancelled []uuid.UUID
	err       error
}

func (r *recordingReminders) ScheduleForBilling(ctx context.Context, billing *models.Billing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, billing.ID)
	return r.err
}

func (r *recordingReminders) CancelForInstallment(ctx context.Context, installmentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, installmentID)
	return r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
