package db

import (
	"os"
	"strconv"

	"gorm.io/gorm"
)

// GetDB builds the connection from environment variables.
func GetDB() (*gorm.DB, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPortEnv := os.Getenv("DB_PORT")
	port, err := strconv.ParseUint(dbPortEnv, 10, 32)
	if err != nil {
		port = 5432 // Default PostgreSQL port
	}

	dbName := os.Getenv("DB_NAME")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	return ConnectDatabase(uint(port), dbHost, dbName, dbUser, dbPassword)
}
