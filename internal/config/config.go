package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Shop      ShopConfig
	Billing   BillingConfig
	Printer   PrinterConfig
	Auth      AuthConfig
	Backup    BackupConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Host     string
	Port     string
	Debug    bool
	LogLevel string
	// DataDir is the only place HTTP clients may name files in.
	DataDir string
}

// Addr is the listen address for the HTTP server.
func (a AppConfig) Addr(port string) string {
	if port == "" {
		port = a.Port
	}
	return net.JoinHostPort(a.Host, port)
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// ShopConfig is printed at the top of every receipt.
type ShopConfig struct {
	Name    string
	Address string
	Phone   string
	GSTIN   string
}

type BillingConfig struct {
	DefaultGST        decimal.Decimal
	DefaultCustomer   string
	LowStockThreshold int64
	HistoryLimit      int
	NumberPrefix      string
	NumberWidth       int
	CounterFile       string
	OutputDir         string
	PhoneRegion       string
}

type PrinterConfig struct {
	// Printers is a comma separated list of name=type:target entries.
	Printers  string
	Default   string
	Timeout   time.Duration
	CharWidth int
}

type AuthConfig struct {
	Username     string
	PasswordHash string
}

func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != ""
}

type BackupConfig struct {
	Dir string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// Load reads envFile (if it exists) and the process environment.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", envFile, err)
	}

	setDefaults(v)

	gst, err := decimal.NewFromString(v.GetString("BILLING_DEFAULT_GST"))
	if err != nil {
		return nil, fmt.Errorf("config: BILLING_DEFAULT_GST: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Host:     v.GetString("APP_HOST"),
			Port:     v.GetString("APP_PORT"),
			Debug:    v.GetBool("APP_DEBUG"),
			LogLevel: v.GetString("LOG_LEVEL"),
			DataDir:  v.GetString("APP_DATA_DIR"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Path:     v.GetString("DB_PATH"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		Shop: ShopConfig{
			Name:    v.GetString("SHOP_NAME"),
			Address: v.GetString("SHOP_ADDRESS"),
			Phone:   v.GetString("SHOP_PHONE"),
			GSTIN:   v.GetString("SHOP_GSTIN"),
		},
		Billing: BillingConfig{
			DefaultGST:        gst,
			DefaultCustomer:   v.GetString("BILLING_DEFAULT_CUSTOMER"),
			LowStockThreshold: v.GetInt64("BILLING_LOW_STOCK_THRESHOLD"),
			HistoryLimit:      v.GetInt("BILLING_HISTORY_LIMIT"),
			NumberPrefix:      v.GetString("BILLING_NUMBER_PREFIX"),
			NumberWidth:       v.GetInt("BILLING_NUMBER_WIDTH"),
			CounterFile:       v.GetString("BILLING_COUNTER_FILE"),
			OutputDir:         v.GetString("BILLING_OUTPUT_DIR"),
			PhoneRegion:       v.GetString("PHONE_DEFAULT_REGION"),
		},
		Printer: PrinterConfig{
			Printers:  v.GetString("PRINTERS"),
			Default:   v.GetString("PRINTER_DEFAULT"),
			Timeout:   v.GetDuration("PRINTER_TIMEOUT"),
			CharWidth: v.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Auth: AuthConfig{
			Username:     v.GetString("AUTH_USERNAME"),
			PasswordHash: v.GetString("AUTH_PASSWORD_HASH"),
		},
		Backup: BackupConfig{
			Dir: v.GetString("BACKUP_DIR"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "billdesk")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_HOST", "127.0.0.1")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DATA_DIR", "data")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "billdesk.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "billdesk")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("SHOP_NAME", "P.MUTHUGANESAN NADAR TEXTILE AND READYMADE")
	v.SetDefault("SHOP_ADDRESS", "103b kamachi amman sanathi street east raja veethi kanchipuram")
	v.SetDefault("SHOP_PHONE", "04447791355 / 9944369227")
	v.SetDefault("SHOP_GSTIN", "")
	v.SetDefault("BILLING_DEFAULT_GST", "18")
	v.SetDefault("BILLING_DEFAULT_CUSTOMER", "Customer")
	v.SetDefault("BILLING_LOW_STOCK_THRESHOLD", 100)
	v.SetDefault("BILLING_HISTORY_LIMIT", 200)
	v.SetDefault("BILLING_NUMBER_PREFIX", "BILL")
	v.SetDefault("BILLING_NUMBER_WIDTH", 6)
	v.SetDefault("BILLING_COUNTER_FILE", "bill_counter.txt")
	v.SetDefault("BILLING_OUTPUT_DIR", "bills_pdf")
	v.SetDefault("PHONE_DEFAULT_REGION", "IN")
	v.SetDefault("PRINTERS", "")
	v.SetDefault("PRINTER_DEFAULT", "")
	v.SetDefault("PRINTER_TIMEOUT", "15s")
	v.SetDefault("PRINTER_CHAR_WIDTH", 32)
	v.SetDefault("AUTH_USERNAME", "admin")
	v.SetDefault("AUTH_PASSWORD_HASH", "")
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// MySQLDSN formats the connection string expected by the mysql driver.
func (c *DatabaseConfig) MySQLDSN() string {
	return c.User + ":" + c.Password +
		"@tcp(" + c.Host + ":" + c.Port + ")/" + c.Name +
		"?charset=utf8mb4&parseTime=True&loc=Local"
}
