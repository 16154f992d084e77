package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config reúne tudo que a aplicação lê do ambiente.
type Config struct {
	Address     string `env:"ADDRESS" envDefault:":8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`

	// Banco de dados
	DBHost       string `env:"DB_HOST" envDefault:"localhost"`
	DBPort       uint   `env:"DB_PORT" envDefault:"5432"`
	DBName       string `env:"DB_NAME" envDefault:"crm"`
	DBSSLDisable bool   `env:"DB_SSL_MODE_DISABLE" envDefault:"false"`
	DBSecretID   string `env:"DB_SECRET_ID"`
	DBUsername   string `env:"DB_USERNAME"`
	DBPassword   string `env:"DB_PASSWORD"`
	AWSRegion    string `env:"AWS_REGION"`

	// Tokens
	JWTPrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./keys/jwtRS256.key"`
	JWTKeyID          string `env:"JWT_KID" envDefault:"crm-key-1"`
	JWTIssuer         string `env:"JWT_ISSUER" envDefault:"crm-api"`
	JWTAudience       string `env:"JWT_AUDIENCE" envDefault:"crm-frontend"`
	CookieSecure      bool   `env:"COOKIE_SECURE" envDefault:"true"`

	// Seed do gerente padrão
	SeedManagerEmail    string `env:"SEED_MANAGER_EMAIL" envDefault:"admin@crmsystem.com"`
	SeedManagerPassword string `env:"SEED_MANAGER_PASSWORD"`

	// Alertas (duplicidade de email, reatribuição); vazio desliga
	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`

	// Logs
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogPath       string `env:"LOG_PATH" envDefault:"logs"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30"`
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load carrega os arquivos .env (se existirem) e depois lê o ambiente.
// Variáveis já definidas no ambiente têm precedência sobre o arquivo.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("carregar %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ler configuração: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LogOutput {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("LOG_OUTPUT inválido: %q", c.LogOutput)
	}
	if c.DBSecretID == "" && (c.DBUsername == "" || c.DBPassword == "") {
		return errors.New("defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}
	return nil
}

// Origins separa CORS_ORIGINS por vírgula.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Output:     c.LogOutput,
		Path:       c.LogPath,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
		Compress:   c.LogCompress,
	}
}
