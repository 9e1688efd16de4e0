package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/tablebook/internal/booking"
)

// Драйверы хранилища снимка броней.
const (
	StorageDriverMemory   = "memory"
	StorageDriverFile     = "file"
	StorageDriverBadger   = "badger"
	StorageDriverPostgres = "postgres"
)

// Переменные окружения.
const (
	EnvHTTPAddr            = "TABLEBOOK_HTTP_ADDR"
	EnvGRPCAddr            = "TABLEBOOK_GRPC_ADDR"
	EnvMetricsAddr         = "TABLEBOOK_METRICS_ADDR"
	EnvStorageDriver       = "TABLEBOOK_STORAGE_DRIVER"
	EnvFilePath            = "TABLEBOOK_FILE_PATH"
	EnvBadgerDir           = "TABLEBOOK_BADGER_DIR"
	EnvPostgresDSN         = "TABLEBOOK_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "TABLEBOOK_POSTGRES_AUTO_MIGRATE"
	EnvLimitPerHour        = "TABLEBOOK_LIMIT_PER_HOUR"
	EnvMenuPath            = "TABLEBOOK_MENU_PATH"
	EnvKafkaBrokers        = "TABLEBOOK_KAFKA_BROKERS"
	EnvKafkaTopic          = "TABLEBOOK_KAFKA_TOPIC"
	EnvAMQPURL             = "TABLEBOOK_AMQP_URL"
	EnvAMQPExchange        = "TABLEBOOK_AMQP_EXCHANGE"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	FilePath            string
	BadgerDir           string
	PostgresDSN         string
	PostgresAutoMigrate bool

	LimitPerHour int
	MenuPath     string

	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverFile,
		FilePath:            "reservations.json",
		BadgerDir:           "data/badger",
		PostgresAutoMigrate: true,
		LimitPerHour:        booking.DefaultLimitPerHour,
		MenuPath:            "menu.json",
		KafkaTopic:          "tablebook.reservation.events",
		AMQPExchange:        "reservations",
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory, StorageDriverBadger:
	case StorageDriverFile:
		if strings.TrimSpace(c.FilePath) == "" {
			errs = append(errs, errors.New("file path is required for file storage"))
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, fmt.Errorf("%s is required for postgres storage", EnvPostgresDSN))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver: %q", c.StorageDriver))
	}
	if c.LimitPerHour < 1 {
		errs = append(errs, fmt.Errorf("limit per hour must be > 0, got %d", c.LimitPerHour))
	}
	return errors.Join(errs...)
}

// EnvLookup читает переменную окружения (os.LookupEnv в продакшене).
type EnvLookup func(key string) (string, bool)

// FromEnv читает конфигурацию из окружения процесса.
func FromEnv() (Config, []error) {
	return ReadConfigFromEnv(os.LookupEnv)
}

// ReadConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не применяются и возвращаются как предупреждения.
func ReadConfigFromEnv(lookup EnvLookup) (Config, []error) {
	cfg := DefaultConfig()
	var warnings []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvHTTPAddr, &cfg.HTTPAddr)
	str(EnvGRPCAddr, &cfg.GRPCAddr)
	str(EnvMetricsAddr, &cfg.MetricsAddr)
	str(EnvFilePath, &cfg.FilePath)
	str(EnvBadgerDir, &cfg.BadgerDir)
	str(EnvPostgresDSN, &cfg.PostgresDSN)
	str(EnvMenuPath, &cfg.MenuPath)
	str(EnvKafkaTopic, &cfg.KafkaTopic)
	str(EnvAMQPURL, &cfg.AMQPURL)
	str(EnvAMQPExchange, &cfg.AMQPExchange)

	if v, ok := lookup(EnvStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup(EnvPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		parsed, err := ParseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", EnvPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	if v, ok := lookup(EnvLimitPerHour); ok && strings.TrimSpace(v) != "" {
		parsed, err := ParseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", EnvLimitPerHour, err))
		} else {
			cfg.LimitPerHour = parsed
		}
	}

	if v, ok := lookup(EnvKafkaBrokers); ok {
		cfg.KafkaBrokers = SplitList(v)
	}

	return cfg, warnings
}

// ParseBool разбирает булево значение, включая yes/no и on/off.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

// ParseInt разбирает целое и проверяет его валидатором.
func ParseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("invalid value %d: %s", value, rule)
	}
	return value, nil
}

// SplitList разбивает список через запятую, отбрасывая пустые элементы.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
