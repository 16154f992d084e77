package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretGetter é a parte do client do Secrets Manager que usamos.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func newSecretsClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// retrieveCredentials usa DB_USERNAME/DB_PASSWORD se vierem no ambiente;
// caso contrário busca o segredo no AWS Secrets Manager.
func retrieveCredentials(ctx context.Context, p Params) (string, string, error) {
	if p.Username != "" && p.Password != "" {
		return p.Username, p.Password, nil
	}
	if p.SecretID == "" {
		return "", "", errors.New("nenhuma credencial configurada")
	}
	client, err := newSecretsClient(ctx, p.AWSRegion)
	if err != nil {
		return "", "", err
	}
	creds, err := fetchSecret(ctx, client, p.SecretID)
	if err != nil {
		return "", "", err
	}
	return creds.Username, creds.Password, nil
}

func fetchSecret(ctx context.Context, client SecretGetter, secretID string) (Credentials, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("ler segredo %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return Credentials{}, fmt.Errorf("segredo %s sem SecretString", secretID)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return Credentials{}, fmt.Errorf("segredo %s inválido: %w", secretID, err)
	}
	if secret.Username == "" || secret.Password == "" {
		return Credentials{}, fmt.Errorf("segredo %s incompleto", secretID)
	}
	return secret, nil
}
