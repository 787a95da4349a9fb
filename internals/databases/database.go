package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
)

var DB *gorm.DB

func ConnectDB() {
	driver := strings.ToLower(getenv("DB_DRIVER", "postgres"))
	log.Printf("🔌 Connecting to database (driver=%s)...", driver)

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = OpenSQLite(getenv("SQLITE_PATH", "hrportal.db"))
	default:
		db, err = OpenPostgres()
	}
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func OpenPostgres() (*gorm.DB, error) {
	// with PgBouncer point host/port at the pooler and keep PreferSimpleProtocol=true
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=hrportal&options=-c statement_timeout=5000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// OpenSQLite opens a file-backed SQLite database with foreign keys on.
// Used for local development and the integration tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func TunePool() {
	if strings.EqualFold(getenv("DB_DRIVER", "postgres"), "sqlite") {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(DB); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialised")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
