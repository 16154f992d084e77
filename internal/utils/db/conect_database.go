package db

import (
	"context"
	"fmt"
	"time"

	applog "github.com/KromaEnergia/api-crm/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Params são os dados de conexão já resolvidos (sem segredo).
type Params struct {
	Host       string
	Port       uint
	Name       string
	SSLDisable bool
	SecretID   string
	Username   string
	Password   string
	AWSRegion  string
}

func ConnectDataBase(ctx context.Context, p Params) (*gorm.DB, error) {
	username, password, err := retrieveCredentials(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("credenciais do banco: %w", err)
	}

	var sslMode string
	if p.SSLDisable {
		sslMode = " sslmode=disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s", p.Host, username, password, p.Name, p.Port, sslMode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(applog.Get("gorm"), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return database, nil
}
