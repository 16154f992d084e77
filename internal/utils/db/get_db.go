package db

import (
	"context"

	"github.com/KromaEnergia/api-crm/internal/config"
	"gorm.io/gorm"
)

func GetDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	return ConnectDataBase(ctx, Params{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		Name:       cfg.DBName,
		SSLDisable: cfg.DBSSLDisable,
		SecretID:   cfg.DBSecretID,
		Username:   cfg.DBUsername,
		Password:   cfg.DBPassword,
		AWSRegion:  cfg.AWSRegion,
	})
}
