package testutil

import (
	"time"

	"natillera-miahorro/internal/config"

	"github.com/shopspring/decimal"
)

// NewTestConfig creates a configuration that needs no environment
func NewTestConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Port:    "0",
		Database: config.DatabaseConfig{
			Driver: "mysql",
		},
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenMins: 15,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
		Raffle: config.RaffleConfig{TicketPrice: decimal.NewFromInt(20)},
		Org: config.OrgConfig{
			Name: "Natillera Prueba",
			City: "Medellín",
		},
		Cron: config.CronConfig{
			DailyReport:  "0 9 * * *",
			OverdueSweep: "30 0 * * *",
		},
		Notify: config.NotifyConfig{
			Workers:     1,
			QueueSize:   8,
			TaskTimeout: time.Second,
		},
	}
}
