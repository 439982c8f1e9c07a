package reminders

import (
	"fmt"

	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/internal/pkg/billing"
)

const displayDate = "02/01/2006"

// composeReminder renders the Portuguese reminder text for one installment.
func composeReminder(kind models.ReminderType, inst *models.Installment, b *models.Billing) (string, string) {
	outstanding := inst.Amount - inst.PaidAmount
	if outstanding < 0 {
		outstanding = 0
	}
	subject := fmt.Sprintf("Parcela %d de \"%s\" (%s)", inst.InstallmentNumber, b.Description, billing.FormatBRL(outstanding))
	due := inst.DueDate.Format(displayDate)

	var title, body string
	switch kind {
	case models.ReminderDueIn7Days:
		title = "Pagamento vence em 7 dias"
		body = fmt.Sprintf("%s vence em 7 dias, em %s.", subject, due)
	case models.ReminderDueIn3Days:
		title = "Pagamento vence em 3 dias"
		body = fmt.Sprintf("%s vence em 3 dias, em %s.", subject, due)
	case models.ReminderDueToday:
		title = "Pagamento vence hoje"
		body = fmt.Sprintf("%s vence hoje.", subject)
	default:
		title = "Pagamento em atraso"
		body = fmt.Sprintf("%s está em atraso desde %s.", subject, due)
	}
	return title, body
}

// composeEvent renders the inbox entry for a billing event.
func composeEvent(ev billing.Event) (string, string) {
	switch ev.Type {
	case billing.EventBillingCreated:
		return "Nova cobrança", fmt.Sprintf("Cobrança \"%s\" de %s criada.", ev.Description, billing.FormatBRL(ev.Amount))
	case billing.EventPaymentRecorded:
		return "Pagamento registrado", fmt.Sprintf("Pagamento de %s registrado em \"%s\".", billing.FormatBRL(ev.Amount), ev.Description)
	case billing.EventBillingCancelled:
		return "Cobrança cancelada", fmt.Sprintf("A cobrança \"%s\" foi cancelada.", ev.Description)
	}
	return "Cobrança atualizada", fmt.Sprintf("A cobrança \"%s\" foi atualizada.", ev.Description)
}
