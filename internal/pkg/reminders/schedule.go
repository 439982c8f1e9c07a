package reminders

import (
	"time"

	"github.com/google/uuid"

	"github.com/doulando/ventre/app/models"
)

// ReminderHour is the local hour at which reminders fire.
const ReminderHour = 12

type leadTime struct {
	days int
	kind models.ReminderType
}

// Overdue reminders are never scheduled ahead of time.
var leadTimes = []leadTime{
	{days: 7, kind: models.ReminderDueIn7Days},
	{days: 3, kind: models.ReminderDueIn3Days},
	{days: 0, kind: models.ReminderDueToday},
}

// SlotFor returns local noon leadDays before the due date.
func SlotFor(dueDate time.Time, leadDays int, loc *time.Location) time.Time {
	y, m, d := dueDate.Date()
	return time.Date(y, m, d-leadDays, ReminderHour, 0, 0, 0, loc)
}

// BuildSchedule returns one pending reminder per installment, lead time and
// recipient. Slots already in the past relative to now are dropped.
func BuildSchedule(installments []models.Installment, recipients []uuid.UUID, now time.Time, loc *time.Location) []models.ScheduledNotification {
	if loc == nil {
		loc = time.UTC
	}
	var rows []models.ScheduledNotification
	for _, inst := range installments {
		if inst.IsSettled() {
			continue
		}
		for _, lead := range leadTimes {
			at := SlotFor(inst.DueDate, lead.days, loc)
			if at.Before(now) {
				continue
			}
			for _, userID := range recipients {
				rows = append(rows, models.ScheduledNotification{
					ID:            uuid.New(),
					InstallmentID: inst.ID,
					UserID:        userID,
					Type:          lead.kind,
					ScheduledFor:  at,
					Status:        models.NotificationPending,
				})
			}
		}
	}
	return rows
}

// ResolveRecipients merges the care team with the patient's own account,
// keeping first-seen order and dropping duplicates.
func ResolveRecipients(teamMemberIDs []uuid.UUID, patientUserID *uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(teamMemberIDs)+1)
	out := make([]uuid.UUID, 0, len(teamMemberIDs)+1)
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range teamMemberIDs {
		add(id)
	}
	if patientUserID != nil {
		add(*patientUserID)
	}
	return out
}
