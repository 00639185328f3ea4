package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMySQLDSN(t *testing.T) {
	dsn := buildMySQLDSN(DatabaseConfig{
		Host:     "db",
		Port:     "3306",
		User:     "natillera",
		Password: "secreto",
		DBName:   "miahorro",
	})

	assert.Equal(t, "natillera:secreto@tcp(db:3306)/miahorro?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true", dsn)
}
