package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	JWT         JWTConfig
	Monime      MonimeConfig
	Fees        FeeConfig
	Consistency ConsistencyConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr       string // empty disables the balance cache
	Password   string
	DB         int
	BalanceTTL time.Duration
}

type KafkaConfig struct {
	Brokers       []string // empty disables the outbox sender
	WalletTopic   string
	EscrowTopic   string
	MaxRetryCount int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// MonimeConfig holds credentials for the mobile-money payout/collection API.
type MonimeConfig struct {
	BaseURL        string
	SpaceID        string
	APIToken       string
	Currency       string
	WebhookBaseURL string // callback will be WebhookBaseURL + /api/v1/webhooks/monime
}

// FeeConfig carries the platform fee schedule. Rates are parameterized per
// operation; the actual business schedule is owned by finance, not this code.
type FeeConfig struct {
	WithdrawalRate float64
	ReleaseRate    float64
}

// ConsistencyConfig tunes the diagnostic scan thresholds.
type ConsistencyConfig struct {
	MinorUnitFloor   int64
	MinorUnitCeiling int64
	PendingStaleness time.Duration
}

// Load reads config.yaml from the given directory, if present, with
// environment overrides: SALONEMART_DATABASE_DSN overrides database.dsn.
func Load(dir string) *Config {
	v := viper.New()
	v.SetEnvPrefix("SALONEMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if dir == "" {
		dir = "."
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("[Config] read config: %v", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		log.Fatalf("[Config] unmarshal: %v", err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.readtimeout", 10*time.Second)
	v.SetDefault("server.writetimeout", 10*time.Second)

	v.SetDefault("database.dsn", "salonemart:salonemart@tcp(localhost:3306)/salonemart?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)
	v.SetDefault("database.connmaxlifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.balancettl", 5*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.wallettopic", "wallet-events")
	v.SetDefault("kafka.escrowtopic", "escrow-events")
	v.SetDefault("kafka.maxretrycount", 5)

	v.SetDefault("jwt.accesssecret", "change-me-in-production")
	v.SetDefault("jwt.refreshsecret", "change-me-refresh")
	v.SetDefault("jwt.accessexpiry", 15*time.Minute)
	v.SetDefault("jwt.refreshexpiry", 168*time.Hour)
	v.SetDefault("jwt.issuer", "salonemart")

	v.SetDefault("monime.baseurl", "https://api.monime.io")
	v.SetDefault("monime.currency", "SLE")

	v.SetDefault("fees.withdrawalrate", 0.02)
	v.SetDefault("fees.releaserate", 0.02)

	v.SetDefault("consistency.minorunitfloor", 100)
	v.SetDefault("consistency.minorunitceiling", 100_000_000)
	v.SetDefault("consistency.pendingstaleness", 72*time.Hour)
}
