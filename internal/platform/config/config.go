package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Email     EmailConfig     `mapstructure:"email"`
	Blob      BlobConfig      `mapstructure:"blob"`
	Domains   DomainsConfig   `mapstructure:"domains"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// TrustedProxies lists the addresses or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// StoreConfig selects the key/value backend. Only the section matching Driver is read.
type StoreConfig struct {
	Driver   string         `mapstructure:"driver"` // bolt, sqlite, redis, dynamodb, memory
	Bolt     BoltConfig     `mapstructure:"bolt"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

type BoltConfig struct {
	Path string `mapstructure:"path"`
}

type SQLiteConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DynamoDBConfig struct {
	Table     string `mapstructure:"table"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type JWTConfig struct {
	Secret       string        `mapstructure:"secret"`
	MagicLinkTTL time.Duration `mapstructure:"magic_link_ttl"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

type RateLimitConfig struct {
	PublicPerMinute int `mapstructure:"public_per_minute"`
	LoginPerMinute  int `mapstructure:"login_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type EmailConfig struct {
	Provider string     `mapstructure:"provider"` // smtp, log
	SMTP     SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type BlobConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

type DomainsConfig struct {
	AppDomain    string `mapstructure:"app_domain"`
	PublicDomain string `mapstructure:"public_domain"`
}

type AdminConfig struct {
	MasterEmail string `mapstructure:"master_email"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("store.driver", "bolt")
	v.SetDefault("store.bolt.path", "./data/biolink.db")
	v.SetDefault("store.sqlite.path", "./data/biolink.sqlite")
	v.SetDefault("store.sqlite.max_connections", 4)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.dynamodb.table", "biolink")
	v.SetDefault("store.dynamodb.region", "us-east-1")
	v.SetDefault("store.dynamodb.endpoint", "")
	v.SetDefault("store.dynamodb.access_key", "")
	v.SetDefault("store.dynamodb.secret_key", "")
	// env-only keys still need a default or Unmarshal never sees them
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.magic_link_ttl", 15*time.Minute)
	v.SetDefault("jwt.session_ttl", 7*24*time.Hour)
	v.SetDefault("rate_limit.public_per_minute", 600)
	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("email.provider", "log")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from_address", "")
	v.SetDefault("email.smtp.from_name", "Biolink")
	v.SetDefault("blob.base_dir", "./data/uploads")
	v.SetDefault("blob.public_base_url", "http://localhost:8080/uploads")
	v.SetDefault("blob.max_upload_size", 5<<20)
	v.SetDefault("domains.app_domain", "localhost:8080")
	v.SetDefault("domains.public_domain", "localhost:8080")
	v.SetDefault("admin.master_email", "")
}

// Load reads the YAML file at path. A missing file is tolerated so the service
// can run from defaults and environment variables alone.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("BIOLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
