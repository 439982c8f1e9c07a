package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/report"
)

//go:generate mockgen -destination=mocks/mock_billing_service.go -package=mocks . BillingService

// BillingService is the subset of billing.Service the HTTP layer needs.
type BillingService interface {
	CreateBilling(ctx context.Context, actorID uuid.UUID, in billing.CreateBillingInput) (*models.Billing, error)
	RecordPayment(ctx context.Context, actorID, installmentID uuid.UUID, in billing.RecordPaymentInput) (*models.Payment, error)
	CancelBilling(ctx context.Context, actorID, billingID uuid.UUID) (*models.Billing, error)
	GetBilling(ctx context.Context, actorID, billingID uuid.UUID) (*models.Billing, error)
	ListBillings(ctx context.Context, actorID uuid.UUID, filter billing.BillingFilter) ([]models.Billing, int64, error)
	ListPayments(ctx context.Context, actorID, installmentID uuid.UUID) ([]models.Payment, error)
	Summary(ctx context.Context, actorID uuid.UUID) (*billing.Summary, error)
}

type createBillingRequest struct {
	PatientID           string   `json:"patient_id" validate:"required,uuid"`
	Description         string   `json:"description" validate:"required,min=3,max=200"`
	TotalAmount         int64    `json:"total_amount" validate:"required,gt=0"`
	PaymentMethod       string   `json:"payment_method" validate:"required,oneof=credito debito pix boleto dinheiro outro"`
	InstallmentCount    int      `json:"installment_count" validate:"omitempty,min=1,max=10"`
	InstallmentInterval int      `json:"installment_interval" validate:"omitempty,min=1,max=4"`
	FirstDueDate        string   `json:"first_due_date" validate:"required,datetime=2006-01-02"`
	PaymentLinks        []string `json:"payment_links" validate:"omitempty,max=10,dive,url"`
	Notes               string   `json:"notes" validate:"max=500"`
}

type recordPaymentRequest struct {
	PaidAt        string `json:"paid_at" validate:"required,datetime=2006-01-02"`
	PaidAmount    int64  `json:"paid_amount" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=credito debito pix boleto dinheiro outro"`
	Notes         string `json:"notes" validate:"max=500"`
}

// maxExportRows caps a single spreadsheet export.
const maxExportRows = 1000

type BillingController struct {
	service BillingService
	loc     *time.Location
	now     func() time.Time
}

func NewBillingController(service BillingService, loc *time.Location) *BillingController {
	if loc == nil {
		loc = time.UTC
	}
	return &BillingController{service: service, loc: loc, now: time.Now}
}

// HandleCreate handles POST /api/v1/billings
func (bc *BillingController) HandleCreate(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req createBillingRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	req.Description = strings.TrimSpace(req.Description)
	req.Notes = strings.TrimSpace(req.Notes)
	if fields := validateStruct(req); fields != nil {
		return validationFailed(c, fields)
	}

	firstDue, err := billing.ParseDueDate(req.FirstDueDate)
	if err != nil {
		return validationFailed(c, map[string]string{"first_due_date": "must be a date in YYYY-MM-DD format"})
	}

	created, err := bc.service.CreateBilling(c.UserContext(), actorID, billing.CreateBillingInput{
		PatientID:           uuid.MustParse(req.PatientID),
		Description:         req.Description,
		TotalAmount:         req.TotalAmount,
		PaymentMethod:       models.PaymentMethod(req.PaymentMethod),
		InstallmentCount:    req.InstallmentCount,
		InstallmentInterval: req.InstallmentInterval,
		FirstDueDate:        firstDue,
		PaymentLinks:        req.PaymentLinks,
		Notes:               req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleList handles GET /api/v1/billings
func (bc *BillingController) HandleList(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	filter, ok := parseBillingFilter(c)
	if !ok {
		return validationFailed(c, map[string]string{"patient_id": "must be a valid UUID"})
	}
	filter.Normalize()

	items, total, err := bc.service.ListBillings(c.UserContext(), actorID, filter)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []models.Billing{}
	}
	return c.JSON(listResponse{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// HandleExport handles GET /api/v1/billings/export. It accepts the list
// filters and returns every matching billing as an .xlsx attachment.
func (bc *BillingController) HandleExport(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	filter, ok := parseBillingFilter(c)
	if !ok {
		return validationFailed(c, map[string]string{"patient_id": "must be a valid UUID"})
	}
	filter.Limit = billing.MaxListLimit
	filter.Offset = 0

	var all []models.Billing
	for len(all) < maxExportRows {
		page, total, err := bc.service.ListBillings(c.UserContext(), actorID, filter)
		if err != nil {
			return respondError(c, err)
		}
		all = append(all, page...)
		filter.Offset += len(page)
		if len(page) < filter.Limit || int64(filter.Offset) >= total {
			break
		}
	}
	if len(all) > maxExportRows {
		all = all[:maxExportRows]
	}

	f, err := report.BillingsWorkbook(all, bc.loc)
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, report.ContentTypeXLSX)
	c.Attachment(report.FileName(bc.now().In(bc.loc)))
	return c.Send(buf.Bytes())
}

// HandleSummary handles GET /api/v1/billings/summary
func (bc *BillingController) HandleSummary(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	summary, err := bc.service.Summary(c.UserContext(), actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// HandleGet handles GET /api/v1/billings/:id
func (bc *BillingController) HandleGet(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	b, err := bc.service.GetBilling(c.UserContext(), actorID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(b)
}

// HandleCancel handles POST /api/v1/billings/:id/cancel
func (bc *BillingController) HandleCancel(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	b, err := bc.service.CancelBilling(c.UserContext(), actorID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(b)
}

// HandleRecordPayment handles POST /api/v1/installments/:id/payments
func (bc *BillingController) HandleRecordPayment(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	installmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	req.Notes = strings.TrimSpace(req.Notes)
	if fields := validateStruct(req); fields != nil {
		return validationFailed(c, fields)
	}

	paidAt, err := billing.ParseDueDate(req.PaidAt)
	if err != nil {
		return validationFailed(c, map[string]string{"paid_at": "must be a date in YYYY-MM-DD format"})
	}

	// Future dates are rejected by the service against the business timezone.
	payment, err := bc.service.RecordPayment(c.UserContext(), actorID, installmentID, billing.RecordPaymentInput{
		PaidAt:        paidAt,
		PaidAmount:    req.PaidAmount,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleListPayments handles GET /api/v1/installments/:id/payments
func (bc *BillingController) HandleListPayments(c *fiber.Ctx) error {
	actorID, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	installmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	payments, err := bc.service.ListPayments(c.UserContext(), actorID, installmentID)
	if err != nil {
		return respondError(c, err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return c.JSON(fiber.Map{"items": payments})
}

// parseBillingFilter reads ?patient_id, ?status, ?limit and ?offset. It
// reports false when patient_id is not a UUID.
func parseBillingFilter(c *fiber.Ctx) (billing.BillingFilter, bool) {
	filter := billing.BillingFilter{
		Status: models.BillingStatus(c.Query("status")),
		Limit:  c.QueryInt("limit", billing.DefaultListLimit),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, false
		}
		filter.PatientID = &id
	}
	return filter, true
}
