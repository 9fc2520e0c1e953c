package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTExpiryH  int    `env:"JWT_EXPIRY_H" envDefault:"24"`
	Port        int    `env:"PORT" envDefault:"5001"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	ProviderBaseURL  string `env:"PROVIDER_BASE_URL" envDefault:"https://api.unblockpay.com"`
	ProviderAPIKey   string `env:"PROVIDER_API_KEY,required"`
	ProviderTimeoutS int    `env:"PROVIDER_TIMEOUT_S" envDefault:"30"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`

	// LocalCurrency is the payin leg's fiat currency; on-ramp quotes are
	// requested as USDC/<LocalCurrency>.
	LocalCurrency string `env:"LOCAL_CURRENCY" envDefault:"BRL"`

	// FallbackExternalAccountID receives payouts by check delivery when a
	// customer has no registered bank account.
	FallbackExternalAccountID string `env:"FALLBACK_EXTERNAL_ACCOUNT_ID,required"`
	OperatorWalletID          string `env:"OPERATOR_WALLET_ID,required"`
	ServiceFeeUSDC            int64  `env:"SERVICE_FEE_USDC" envDefault:"10"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
