package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/doulando/ventre/app/controllers/mocks"
	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/report"
	icuser "github.com/doulando/ventre/internal/pkg/usercontext"
)

func asUser(userID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != uuid.Nil {
			icuser.SetUserContext(c, icuser.UserContext{UserID: userID, IsLoggedIn: true})
		}
		return c.Next()
	}
}

func newBillingApp(svc BillingService, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	bc := NewBillingController(svc, time.UTC)
	api := app.Group("/api/v1", asUser(userID))
	api.Post("/billings", bc.HandleCreate)
	api.Get("/billings", bc.HandleList)
	api.Get("/billings/summary", bc.HandleSummary)
	api.Get("/billings/export", bc.HandleExport)
	api.Get("/billings/:id", bc.HandleGet)
	api.Post("/billings/:id/cancel", bc.HandleCancel)
	api.Post("/installments/:id/payments", bc.HandleRecordPayment)
	api.Get("/installments/:id/payments", bc.HandleListPayments)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func validCreateBody(patientID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":           patientID.String(),
		"description":          "  Acompanhamento de parto  ",
		"total_amount":         300000,
		"payment_method":       "pix",
		"installment_count":    3,
		"installment_interval": 1,
		"first_due_date":       "2024-01-31",
		"payment_links":        []string{"https://pay.example.com/1"},
	}
}

func TestBillingController_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor := uuid.New()
	patient := uuid.New()
	created := &models.Billing{ID: uuid.New(), PatientID: patient, Status: models.BillingStatusPendente}

	svc.EXPECT().
		CreateBilling(gomock.Any(), actor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, in billing.CreateBillingInput) (*models.Billing, error) {
			assert.Equal(t, patient, in.PatientID)
			assert.Equal(t, "Acompanhamento de parto", in.Description)
			assert.Equal(t, int64(300000), in.TotalAmount)
			assert.Equal(t, models.PaymentMethodPix, in.PaymentMethod)
			assert.Equal(t, 3, in.InstallmentCount)
			assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), in.FirstDueDate)
			assert.Equal(t, []string{"https://pay.example.com/1"}, in.PaymentLinks)
			return created, nil
		})

	resp, body := doJSON(t, newBillingApp(svc, actor), fiber.MethodPost, "/api/v1/billings", validCreateBody(patient))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, created.ID.String(), body["id"])
	assert.Equal(t, "pendente", body["status"])
}

func TestBillingController_CreateValidation(t *testing.T) {
	patient := uuid.New()

	tests := []struct {
		name   string
		mutate func(b map[string]interface{})
		field  string
	}{
		{"missing patient", func(b map[string]interface{}) { delete(b, "patient_id") }, "patient_id"},
		{"patient not uuid", func(b map[string]interface{}) { b["patient_id"] = "abc" }, "patient_id"},
		{"short description", func(b map[string]interface{}) { b["description"] = " ab " }, "description"},
		{"zero amount", func(b map[string]interface{}) { b["total_amount"] = 0 }, "total_amount"},
		{"negative amount", func(b map[string]interface{}) { b["total_amount"] = -10 }, "total_amount"},
		{"unknown method", func(b map[string]interface{}) { b["payment_method"] = "cheque" }, "payment_method"},
		{"too many installments", func(b map[string]interface{}) { b["installment_count"] = 11 }, "installment_count"},
		{"interval too long", func(b map[string]interface{}) { b["installment_interval"] = 5 }, "installment_interval"},
		{"bad date", func(b map[string]interface{}) { b["first_due_date"] = "31/01/2024" }, "first_due_date"},
		{"bad link", func(b map[string]interface{}) { b["payment_links"] = []string{"not a url"} }, "payment_links[0]"},
		{"too many links", func(b map[string]interface{}) {
			links := make([]string, 11)
			for i := range links {
				links[i] = fmt.Sprintf("https://pay.example.com/%d", i)
			}
			b["payment_links"] = links
		}, "payment_links"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockBillingService(ctrl)

			body := validCreateBody(patient)
			tt.mutate(body)
			resp, decoded := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodPost, "/api/v1/billings", body)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "validation_error", decoded["error"])
			fields, ok := decoded["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestBillingController_CreateRejectsMalformedJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	resp, body := doJSON(t, newBillingApp(mocks.NewMockBillingService(ctrl), uuid.New()), fiber.MethodPost, "/api/v1/billings", `{"total_amount": 12.5`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", body["error"])
}

func TestBillingController_RequiresUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	app := newBillingApp(mocks.NewMockBillingService(ctrl), uuid.Nil)

	for _, path := range []string{"/api/v1/billings", "/api/v1/billings/summary", "/api/v1/billings/" + uuid.NewString()} {
		resp, body := doJSON(t, app, fiber.MethodGet, path, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "unauthorized", body["error"])
	}
}

func TestBillingController_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", fmt.Errorf("billing %s: %w", uuid.New(), billing.ErrForbidden), fiber.StatusForbidden, "forbidden"},
		{"not found", fmt.Errorf("%w: record not found", billing.ErrNotFound), fiber.StatusNotFound, "not_found"},
		{"conflict", fmt.Errorf("%w: billing is cancelled", billing.ErrConflict), fiber.StatusConflict, "conflict"},
		{"validation", &billing.ValidationError{Fields: map[string]string{"paid_at": "must not be in the future"}}, fiber.StatusBadRequest, "validation_error"},
		{"store failure", errors.New("connection reset by peer"), fiber.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockBillingService(ctrl)
			id := uuid.New()
			svc.EXPECT().GetBilling(gomock.Any(), gomock.Any(), id).Return(nil, tt.err)

			resp, body := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodGet, "/api/v1/billings/"+id.String(), nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			if tt.status == fiber.StatusInternalServerError {
				assert.Equal(t, "Internal server error", body["message"], "store details must not leak")
			}
		})
	}
}

func TestBillingController_GetRejectsBadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	resp, body := doJSON(t, newBillingApp(mocks.NewMockBillingService(ctrl), uuid.New()), fiber.MethodGet, "/api/v1/billings/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "id")
}

func TestBillingController_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor := uuid.New()
	patient := uuid.New()

	svc.EXPECT().
		ListBillings(gomock.Any(), actor, billing.BillingFilter{
			PatientID: &patient,
			Status:    models.BillingStatusAtrasado,
			Limit:     billing.MaxListLimit,
			Offset:    0,
		}).
		Return([]models.Billing{{ID: uuid.New()}}, int64(42), nil)

	path := fmt.Sprintf("/api/v1/billings?patient_id=%s&status=atrasado&limit=500&offset=-3", patient)
	resp, body := doJSON(t, newBillingApp(svc, actor), fiber.MethodGet, path, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(42), body["total"])
	assert.Equal(t, float64(100), body["limit"])
	assert.Len(t, body["items"], 1)
}

func TestBillingController_ListEmptyIsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	svc.EXPECT().ListBillings(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, int64(0), nil)

	resp, body := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodGet, "/api/v1/billings", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["items"])
	assert.Equal(t, float64(billing.DefaultListLimit), body["limit"])
}

func TestBillingController_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor, id := uuid.New(), uuid.New()
	svc.EXPECT().CancelBilling(gomock.Any(), actor, id).Return(&models.Billing{ID: id, Status: models.BillingStatusCancelado}, nil)

	resp, body := doJSON(t, newBillingApp(svc, actor), fiber.MethodPost, "/api/v1/billings/"+id.String()+"/cancel", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelado", body["status"])
}

func TestBillingController_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor := uuid.New()
	svc.EXPECT().Summary(gomock.Any(), actor).Return(&billing.Summary{ProfessionalID: actor, PendingAmount: 1500}, nil)

	resp, body := doJSON(t, newBillingApp(svc, actor), fiber.MethodGet, "/api/v1/billings/summary", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1500), body["pending_amount"])
}

func TestBillingController_RecordPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor, installment := uuid.New(), uuid.New()

	svc.EXPECT().
		RecordPayment(gomock.Any(), actor, installment, billing.RecordPaymentInput{
			PaidAt:        time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			PaidAmount:    50000,
			PaymentMethod: models.PaymentMethodDinheiro,
			Notes:         "recebido na consulta",
		}).
		Return(&models.Payment{ID: uuid.New(), InstallmentID: installment, PaidAmount: 50000}, nil)

	resp, body := doJSON(t, newBillingApp(svc, actor), fiber.MethodPost, "/api/v1/installments/"+installment.String()+"/payments", map[string]interface{}{
		"paid_at":        "2024-02-10",
		"paid_amount":    50000,
		"payment_method": "dinheiro",
		"notes":          " recebido na consulta ",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(50000), body["paid_amount"])
}

func TestBillingController_RecordPaymentValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)

	resp, body := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodPost, "/api/v1/installments/"+uuid.NewString()+"/payments", map[string]interface{}{
		"paid_at":        "amanhã",
		"paid_amount":    0,
		"payment_method": "pix",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "paid_at")
	assert.Contains(t, fields, "paid_amount")
	assert.NotContains(t, fields, "payment_method")
}

func TestBillingController_ListPayments(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	installment := uuid.New()
	svc.EXPECT().ListPayments(gomock.Any(), gomock.Any(), installment).Return(nil, nil)

	resp, body := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodGet, "/api/v1/installments/"+installment.String()+"/payments", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["items"])
}

func billingPage(n int) []models.Billing {
	page := make([]models.Billing, n)
	for i := range page {
		page[i] = models.Billing{ID: uuid.New(), Description: fmt.Sprintf("Consulta %d", i+1), TotalAmount: 10000, Status: models.BillingStatusPendente}
	}
	return page
}

func TestBillingController_ExportPagesThroughResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	actor := uuid.New()

	gomock.InOrder(
		svc.EXPECT().
			ListBillings(gomock.Any(), actor, billing.BillingFilter{Status: models.BillingStatusPendente, Limit: billing.MaxListLimit, Offset: 0}).
			Return(billingPage(billing.MaxListLimit), int64(130), nil),
		svc.EXPECT().
			ListBillings(gomock.Any(), actor, billing.BillingFilter{Status: models.BillingStatusPendente, Limit: billing.MaxListLimit, Offset: billing.MaxListLimit}).
			Return(billingPage(30), int64(130), nil),
	)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/billings/export?status=pendente&limit=5", nil)
	resp, err := newBillingApp(svc, actor).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, report.ContentTypeXLSX, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.BillingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 131)
}

func TestBillingController_ExportErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBillingService(ctrl)
	svc.EXPECT().ListBillings(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, int64(0), billing.ErrForbidden)

	resp, _ := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodGet, "/api/v1/billings/export", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, newBillingApp(svc, uuid.New()), fiber.MethodGet, "/api/v1/billings/export?patient_id=nope", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "patient_id")

	resp, _ = doJSON(t, newBillingApp(svc, uuid.Nil), fiber.MethodGet, "/api/v1/billings/export", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
