package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	Callback CallbackConfig
	Report   ReportConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Driver  string // "mysql", "postgres"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

// CallbackConfig holds the knobs of the callback pipeline that are not secrets.
type CallbackConfig struct {
	VerifyTimeout  time.Duration
	RateLimit      float64
	DedupTTL       time.Duration
	LogRetention   time.Duration
	LogPruneSpec   string
	RefreshChannel string
	DonateToken    string
}

type ReportConfig struct {
	BotToken string
	ChatID   int64
}

type PaymentConfig struct {
	Tokopay  TokopayConfig
	Pakasir  PakasirConfig
	Qrispw   QrispwConfig
	Duitku   DuitkuConfig
	Tripay   TripayConfig
	Midtrans MidtransConfig
	Fazz     FazzConfig
	Xendit   XenditConfig
	Doku     DokuConfig
}

type TokopayConfig struct {
	MerchantID string
	Secret     string
}

type PakasirConfig struct {
	ProjectSlug string
	APIKey      string
	BaseURL     string
}

type QrispwConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

type DuitkuConfig struct {
	MerchantCode string
	APIKey       string
}

type TripayConfig struct {
	MerchantCode string
	PrivateKey   string
}

type MidtransConfig struct {
	ServerKey string
}

type FazzConfig struct {
	CallbackToken string
	TokenPolicy   string // "strict", "advisory"
}

type XenditConfig struct {
	CallbackToken string
	TokenPolicy   string // "strict", "advisory"
}

type DokuConfig struct {
	ClientID  string
	SecretKey string
}

// Load reads configuration from .env file and environment variables.
// Gateway secrets have no defaults: an unset secret makes its adapter reject
// every callback.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 3001)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CALLBACK_VERIFY_TIMEOUT", "10s")
	viper.SetDefault("CALLBACK_RATE_LIMIT", 20)
	viper.SetDefault("CALLBACK_DEDUP_TTL", "24h")
	viper.SetDefault("CALLBACK_LOG_RETENTION", "720h")
	viper.SetDefault("CALLBACK_LOG_PRUNE_SPEC", "@daily")
	viper.SetDefault("REFRESH_CHANNEL", "orders:changed")
	viper.SetDefault("PAKASIR_BASE_URL", "https://app.pakasir.com")
	viper.SetDefault("QRISPW_BASE_URL", "https://qris.pw")
	viper.SetDefault("FAZZ_TOKEN_POLICY", "strict")
	viper.SetDefault("XENDIT_TOKEN_POLICY", "strict")

	verifyTimeout, err := time.ParseDuration(viper.GetString("CALLBACK_VERIFY_TIMEOUT"))
	if err != nil || verifyTimeout <= 0 {
		verifyTimeout = 10 * time.Second
	}
	dedupTTL, err := time.ParseDuration(viper.GetString("CALLBACK_DEDUP_TTL"))
	if err != nil {
		dedupTTL = 24 * time.Hour
	}
	retention, err := time.ParseDuration(viper.GetString("CALLBACK_LOG_RETENTION"))
	if err != nil {
		retention = 30 * 24 * time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: loadDatabase(),
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		Callback: CallbackConfig{
			VerifyTimeout:  verifyTimeout,
			RateLimit:      viper.GetFloat64("CALLBACK_RATE_LIMIT"),
			DedupTTL:       dedupTTL,
			LogRetention:   retention,
			LogPruneSpec:   viper.GetString("CALLBACK_LOG_PRUNE_SPEC"),
			RefreshChannel: viper.GetString("REFRESH_CHANNEL"),
			DonateToken:    viper.GetString("DONATE_TOKEN"),
		},
		Report: ReportConfig{
			BotToken: viper.GetString("REPORT_BOT_TOKEN"),
			ChatID:   viper.GetInt64("REPORT_CHAT_ID"),
		},
		Payment: PaymentConfig{
			Tokopay: TokopayConfig{
				MerchantID: viper.GetString("TOKOPAY_MERCHANT_ID"),
				Secret:     viper.GetString("TOKOPAY_SECRET"),
			},
			Pakasir: PakasirConfig{
				ProjectSlug: viper.GetString("PAKASIR_PROJECT_SLUG"),
				APIKey:      viper.GetString("PAKASIR_API_KEY"),
				BaseURL:     strings.TrimRight(viper.GetString("PAKASIR_BASE_URL"), "/"),
			},
			Qrispw: QrispwConfig{
				APIKey:    viper.GetString("QRISPW_API_KEY"),
				APISecret: viper.GetString("QRISPW_API_SECRET"),
				BaseURL:   strings.TrimRight(viper.GetString("QRISPW_BASE_URL"), "/"),
			},
			Duitku: DuitkuConfig{
				MerchantCode: viper.GetString("DUITKU_MERCHANT_CODE"),
				APIKey:       viper.GetString("DUITKU_API_KEY"),
			},
			Tripay: TripayConfig{
				MerchantCode: viper.GetString("TRIPAY_MERCHANT_CODE"),
				PrivateKey:   viper.GetString("TRIPAY_PRIVATE_KEY"),
			},
			Midtrans: MidtransConfig{
				ServerKey: viper.GetString("MIDTRANS_SERVER_KEY"),
			},
			Fazz: FazzConfig{
				CallbackToken: viper.GetString("FAZZ_CALLBACK_TOKEN"),
				TokenPolicy:   strings.ToLower(viper.GetString("FAZZ_TOKEN_POLICY")),
			},
			Xendit: XenditConfig{
				CallbackToken: viper.GetString("XENDIT_CALLBACK_TOKEN"),
				TokenPolicy:   strings.ToLower(viper.GetString("XENDIT_TOKEN_POLICY")),
			},
			Doku: DokuConfig{
				ClientID:  viper.GetString("DOKU_CLIENT_ID"),
				SecretKey: viper.GetString("DOKU_SECRET_KEY"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.API.Key == "" {
		log.Println("WARNING: API_KEY is not set, admin API is disabled")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database settings, for tooling that only
// needs a connection.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()
	viper.AutomaticEnv()
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")

	dbCfg := loadDatabase()
	if dbCfg.Driver != "mysql" && dbCfg.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", dbCfg.Driver)
	}
	return &dbCfg, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Driver:  strings.ToLower(viper.GetString("DB_DRIVER")),
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}
}

func (c *Config) validate() error {
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	for name, policy := range map[string]string{
		"FAZZ_TOKEN_POLICY":   c.Payment.Fazz.TokenPolicy,
		"XENDIT_TOKEN_POLICY": c.Payment.Xendit.TokenPolicy,
	} {
		if policy != "strict" && policy != "advisory" {
			return fmt.Errorf("%s must be strict or advisory, got %q", name, policy)
		}
	}
	if c.Callback.RateLimit < 0 {
		return fmt.Errorf("CALLBACK_RATE_LIMIT must not be negative")
	}
	return nil
}

// DSN returns the driver-specific DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.User, d.Pass, d.Name)
	}
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
