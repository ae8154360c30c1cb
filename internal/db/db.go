package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func BuildDSN(cfg *config.Database) string {
	addr := cfg.DBHost

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.DBHost, "tcp(") || strings.HasPrefix(cfg.DBHost, "unix(") {
		// already qualified
	} else if strings.HasPrefix(cfg.DBHost, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}

	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

// MigrationURL is the golang-migrate form of the DSN.
func MigrationURL(cfg *config.Database) string {
	return "mysql://" + BuildDSN(cfg) + "&multiStatements=true"
}

// Connect opens MySQL through otelsql so every statement gets a span, then
// hands the pool to gorm.
func Connect(cfg *config.Database) (*gorm.DB, error) {
	sqlDB, err := otelsql.Open("mysql", BuildDSN(cfg),
		otelsql.WithAttributes(semconv.DBSystemMySQL),
	)
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	gcfg := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), gcfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// AutoMigrate is the development shortcut; production schemas come from
// cmd/migrate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
