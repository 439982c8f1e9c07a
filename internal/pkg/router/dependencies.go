package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/repository"
	"github.com/doulando/ventre/internal/pkg/billing"
	"github.com/doulando/ventre/internal/pkg/env"
	"github.com/doulando/ventre/internal/pkg/jobqueue"
	"github.com/doulando/ventre/internal/pkg/mail"
	"github.com/doulando/ventre/internal/pkg/reminders"
)

// Dependencies holds the services the HTTP routers hand to controllers.
type Dependencies struct {
	Billing       *billing.Service
	Reminders     *reminders.Service
	Notifications repository.NotificationRepository
	Settings      repository.UserSettingsRepository
	Queue         *jobqueue.Queue
	Location      *time.Location

	JWTSecret      string
	CronSecret     string
	LimiterStorage fiber.Storage
	LimiterMax     int
	MetricsUser    string
	MetricsPass    string
}

// NewDependencies wires the billing and reminder services. Billing events go
// through queue; its workers turn them into inbox notifications.
func NewDependencies(db *gorm.DB, repos *repository.Repositories, queue *jobqueue.Queue, loc *time.Location) *Dependencies {
	senders := reminders.MultiSender{reminders.NewInAppSender(repos.Notification)}
	if mail.Enabled() {
		senders = append(senders, reminders.NewMailSender(repos.Profile, mail.SendMail))
		log.Info("[Router] e-mail reminders enabled")
	}

	reminderService := reminders.NewService(reminders.NewRepository(db), repos.Patient, repos.UserSettings, senders, loc)

	queue.SetEventNotifier(reminders.NewEventNotifier(repos.Patient, repos.Notification))

	billingService := billing.NewServiceFromDB(db, repos.Patient, reminderService, jobqueue.NewEventPublisher(queue),
		billing.WithLocation(loc))

	return &Dependencies{
		Billing:       billingService,
		Reminders:     reminderService,
		Notifications: repos.Notification,
		Settings:      repos.UserSettings,
		Queue:         queue,
		Location:      loc,
		JWTSecret:     env.GetEnv("JWT_SECRET", ""),
		CronSecret:    env.GetEnv("CRON_SECRET", ""),
		LimiterMax:    env.GetInt("API_RATE_LIMIT", 60),
		MetricsUser:   env.GetEnv("METRICS_USER", "admin"),
		MetricsPass:   env.GetEnv("METRICS_PASSWORD", ""),
	}
}
