package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pulsehustle/pulsehustle/internal/application"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/contact"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"github.com/pulsehustle/pulsehustle/internal/models"
	"github.com/pulsehustle/pulsehustle/internal/payment"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/stats"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the configured store. mysql is the production driver;
// sqlite covers dev boxes without a database server.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "mysql":
		dial = mysql.Open(dsn)
	case "sqlite":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return gorm.Open(dial, &gorm.Config{})
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&profile.Profile{},
		&gig.Gig{},
		&payment.Payment{},
		&matching.Job{},
		&application.Application{},
		&stats.Row{},
		&contact.Message{},
		&audit.Log{},
		&audit.ErrorRecord{},
	)
}
