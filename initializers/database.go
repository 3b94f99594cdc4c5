package initializers

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

const (
	dbConnectAttempts = 5
	dbConnectBackoff  = 2 * time.Second
)

// ConnectToDB opens the Postgres connection, retrying a few times so the
// service survives the database coming up after it in a fresh deployment.
func ConnectToDB() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var err error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Println("Connected to database.")
			return
		}
		log.Printf("Database connection attempt %d/%d failed: %v", attempt, dbConnectAttempts, err)
		time.Sleep(dbConnectBackoff)
	}
	log.Fatalf("Could not connect to database: %v", err)
}
