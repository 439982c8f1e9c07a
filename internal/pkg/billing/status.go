package billing

import "github.com/doulando/ventre/app/models"

// DeriveBillingStatus computes a billing's status from its installments.
// Precedence: all pago, then all cancelado, then any atrasado, else pendente.
func DeriveBillingStatus(statuses []models.BillingStatus) models.BillingStatus {
	if len(statuses) == 0 {
		return models.BillingStatusPendente
	}

	allPaid, allCancelled, anyOverdue := true, true, false
	for _, s := range statuses {
		if s != models.BillingStatusPago {
			allPaid = false
		}
		if s != models.BillingStatusCancelado {
			allCancelled = false
		}
		if s == models.BillingStatusAtrasado {
			anyOverdue = true
		}
	}

	switch {
	case allPaid:
		return models.BillingStatusPago
	case allCancelled:
		return models.BillingStatusCancelado
	case anyOverdue:
		return models.BillingStatusAtrasado
	default:
		return models.BillingStatusPendente
	}
}

func installmentStatuses(installments []models.Installment) []models.BillingStatus {
	out := make([]models.BillingStatus, len(installments))
	for i, inst := range installments {
		out[i] = inst.Status
	}
	return out
}
