package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	Reservation  ReservationConfig
	Payment      PaymentConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ReservationConfig 預訂相關設定。HoldDuration 同時決定 expires_at 與掃描釋放的判斷，
// 兩邊共用同一個值，不會漂移。
type ReservationConfig struct {
	HoldDuration  time.Duration
	SweepInterval time.Duration
}

type PaymentConfig struct {
	ServiceURL string
	Timeout    time.Duration
}

type NotificationConfig struct {
	StreamConsumerID string
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database:     GetDatabaseConfig(),
		Redis:        GetRedisConfig(),
		Reservation:  GetReservationConfig(),
		Payment:      GetPaymentConfig(),
		Notification: GetNotificationConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Database: *testConfig,
		Redis:    testRedisConfig,
		Reservation: ReservationConfig{
			HoldDuration:  10 * time.Minute,
			SweepInterval: 100 * time.Millisecond,
		},
		Payment: PaymentConfig{
			ServiceURL: "http://localhost:18000",
			Timeout:    2 * time.Second,
		},
		Notification: NotificationConfig{
			StreamConsumerID: "test",
		},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetReservationConfig() ReservationConfig {
	return ReservationConfig{
		HoldDuration:  getEnvDuration("RESERVATION_HOLD_DURATION", 10*time.Minute),
		SweepInterval: getEnvDuration("RESERVATION_SWEEP_INTERVAL", 30*time.Second),
	}
}

func GetPaymentConfig() PaymentConfig {
	return PaymentConfig{
		ServiceURL: getEnv("PAYMENT_SERVICE_URL", "http://localhost:8000"),
		Timeout:    getEnvDuration("PAYMENT_TIMEOUT", 10*time.Second),
	}
}

func GetNotificationConfig() NotificationConfig {
	return NotificationConfig{
		StreamConsumerID: getEnv("NOTIFICATION_CONSUMER_ID", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
