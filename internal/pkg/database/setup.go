package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/doulando/ventre/app/models"
	"github.com/doulando/ventre/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var DB *gorm.DB

// GetDB returns the shared database handle (nil before SetupDatabase).
func GetDB() *gorm.DB {
	return DB
}

// Driver returns the configured SQL dialect.
func Driver() string {
	if env.GetEnv("DB_DRIVER", DriverPostgres) == DriverMySQL {
		return DriverMySQL
	}
	return DriverPostgres
}

func dialector() gorm.Dialector {
	if Driver() == DriverMySQL {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		})
	}

	// PreferSimpleProtocol keeps us compatible with PgBouncer transaction pooling.
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC application_name=ventre",
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_NAME", ""),
		env.GetEnv("DB_PORT", "5432"),
		env.GetEnv("DB_SSLMODE", "require"),
	)
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}

func SetupDatabase() {
	var err error

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(dialector(), &gorm.Config{})
		if err == nil {
			if env.GetBool("DB_AUTO_MIGRATE", false) {
				autoMigrate(DB)
			}
			log.Infof("[Database] connected (%s)", Driver())
			return
		}

		log.Errorf("[Database] failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// autoMigrate is meant for local development; production schemas come from cmd/migrate.
func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.UserSettings{},
		&models.Patient{},
		&models.TeamMember{},
		&models.Billing{},
		&models.Installment{},
		&models.Payment{},
		&models.ScheduledNotification{},
		&models.Notification{},
	); err != nil {
		log.Errorf("[Database] auto-migrate failed: %v", err)
	}
}
