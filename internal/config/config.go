// Package config carrega a configuração a partir do .env e das variáveis de ambiente.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthSupabase = "supabase"
	AuthNone     = "none"

	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	ListenAddr        string
	LogLevel          slog.Level
	AuthMode          string
	StoreBackend      string
	SupabaseURL       string
	SupabaseAnonKey   string
	DatabaseURL       string
	RunMigrations     bool
	HTTPClientTimeout time.Duration
	RabbitMQURL       string
	Mail              MailConfig
	FollowUpRecipient string
	CORSOrigins       []string
	LoginRateLimit    int
	TrustProxy        bool
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

// NeedsSupabase indica se algum dos modos usa o projeto Supabase.
func (c *Config) NeedsSupabase() bool {
	return c.AuthMode == AuthSupabase || c.StoreBackend == StoreSupabase
}

// Load lê o .env (se existir) e as variáveis de ambiente, aplicando os padrões.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("erro ao ler .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv monta a configuração a partir de uma função de busca de variáveis.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		ListenAddr:        get("LISTEN_ADDR", "127.0.0.1:8080"),
		AuthMode:          strings.ToLower(get("AUTH_MODE", AuthSupabase)),
		StoreBackend:      strings.ToLower(get("STORE_BACKEND", StoreSupabase)),
		SupabaseURL:       strings.TrimRight(get("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   get("SUPABASE_ANON_KEY", ""),
		DatabaseURL:       get("DATABASE_URL", ""),
		RabbitMQURL:       get("RABBITMQ_URL", ""),
		FollowUpRecipient: get("FOLLOWUP_RECIPIENT", ""),
		Mail: MailConfig{
			Host:     get("MAIL_HOST", ""),
			User:     get("MAIL_USER", ""),
			Password: get("MAIL_PASS", ""),
			From:     get("MAIL_FROM", ""),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL inválido: %w", err)
	}

	var err error
	if cfg.RunMigrations, err = strconv.ParseBool(get("RUN_MIGRATIONS", "true")); err != nil {
		return nil, fmt.Errorf("RUN_MIGRATIONS inválido %q: %w", get("RUN_MIGRATIONS", ""), err)
	}
	if cfg.HTTPClientTimeout, err = time.ParseDuration(get("HTTP_CLIENT_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("HTTP_CLIENT_TIMEOUT inválido: %w", err)
	}
	if cfg.Mail.Port, err = strconv.Atoi(get("MAIL_PORT", "587")); err != nil {
		return nil, fmt.Errorf("MAIL_PORT inválido: %w", err)
	}
	if cfg.TrustProxy, err = strconv.ParseBool(get("TRUST_PROXY", "false")); err != nil {
		return nil, fmt.Errorf("TRUST_PROXY inválido %q: %w", get("TRUST_PROXY", ""), err)
	}
	if cfg.LoginRateLimit, err = strconv.Atoi(get("LOGIN_RATE_LIMIT", "10")); err != nil || cfg.LoginRateLimit <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT inválido %q", get("LOGIN_RATE_LIMIT", ""))
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthMode {
	case AuthSupabase, AuthNone:
	default:
		return fmt.Errorf("AUTH_MODE desconhecido %q (use supabase ou none)", c.AuthMode)
	}

	switch c.StoreBackend {
	case StoreSupabase, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL é obrigatório com STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORE_BACKEND desconhecido %q (use supabase, postgres ou memory)", c.StoreBackend)
	}

	if c.NeedsSupabase() && (c.SupabaseURL == "" || c.SupabaseAnonKey == "") {
		return fmt.Errorf("SUPABASE_URL e SUPABASE_ANON_KEY são obrigatórios")
	}
	if c.HTTPClientTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT deve ser positivo")
	}
	return nil
}
