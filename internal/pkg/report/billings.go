package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/doulando/ventre/app/models"
)

const (
	BillingsSheet     = "Cobranças"
	InstallmentsSheet = "Parcelas"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "02/01/2006"
	// built-in "#,##0.00"
	moneyNumFmt = 4
)

var (
	billingHeaders     = []interface{}{"ID", "Paciente", "Descrição", "Forma de pagamento", "Status", "Valor total", "Valor pago", "Em aberto", "Parcelas", "Criada em"}
	installmentHeaders = []interface{}{"Cobrança", "Descrição", "Parcela", "Vencimento", "Status", "Valor", "Valor pago", "Forma de pagamento"}
)

// FileName is the attachment name for an export generated at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("cobrancas_%s.xlsx", now.Format("20060102_150405"))
}

// BillingsWorkbook renders billings on one sheet and their installments on a
// second one. Amounts are written in reais as numbers so they can be summed.
func BillingsWorkbook(billings []models.Billing, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", BillingsSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(InstallmentsSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeBillings(f, billings, loc, bold, money); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeInstallments(f, billings, bold, money); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeBillings(f *excelize.File, billings []models.Billing, loc *time.Location, bold, money int) error {
	if err := writeHeader(f, BillingsSheet, billingHeaders, bold); err != nil {
		return err
	}
	for i, b := range billings {
		row := []interface{}{
			b.ID.String(),
			b.PatientID.String(),
			b.Description,
			string(b.PaymentMethod),
			string(b.Status),
			reais(b.TotalAmount),
			reais(b.PaidAmount),
			reais(b.Outstanding()),
			len(b.Installments),
			b.CreatedAt.In(loc).Format(dateLayout),
		}
		if err := setRow(f, BillingsSheet, i+2, row); err != nil {
			return err
		}
	}
	if n := len(billings); n > 0 {
		if err := f.SetCellStyle(BillingsSheet, "F2", fmt.Sprintf("H%d", n+1), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(BillingsSheet, "A", "B", 38); err != nil {
		return err
	}
	return f.SetColWidth(BillingsSheet, "C", "C", 40)
}

func writeInstallments(f *excelize.File, billings []models.Billing, bold, money int) error {
	if err := writeHeader(f, InstallmentsSheet, installmentHeaders, bold); err != nil {
		return err
	}
	row := 2
	for _, b := range billings {
		for _, inst := range b.Installments {
			method := ""
			if inst.PaymentMethod != nil {
				method = string(*inst.PaymentMethod)
			}
			values := []interface{}{
				b.ID.String(),
				b.Description,
				fmt.Sprintf("%d/%d", inst.InstallmentNumber, len(b.Installments)),
				// due dates are stored as UTC midnight
				inst.DueDate.UTC().Format(dateLayout),
				string(inst.Status),
				reais(inst.Amount),
				reais(inst.PaidAmount),
				method,
			}
			if err := setRow(f, InstallmentsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	if row > 2 {
		if err := f.SetCellStyle(InstallmentsSheet, "F2", fmt.Sprintf("G%d", row-1), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(InstallmentsSheet, "A", "A", 38); err != nil {
		return err
	}
	return f.SetColWidth(InstallmentsSheet, "B", "B", 40)
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}, style int) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func reais(centavos int64) float64 {
	return decimal.New(centavos, -2).InexactFloat64()
}
