package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Kimlik sağlayıcı (şifreli giriş buraya delege edilir)
	IdentityURL        string
	IdentityServiceKey string

	// Boşsa lockout sayaçları süreç içinde tutulur; doluysa Redis paylaşılır
	RedisAddr string

	// PIN oturum token ömrü
	PinSessionTTL time.Duration

	// Lockout eşikleri
	PasswordMaxAttempts   int
	PasswordLockoutWindow time.Duration
	PinMaxAttempts        int
	PinLockoutWindow      time.Duration
}

func Load() *Config {
	// .env varsa yükle, yoksa sorun değil
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=kasa port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		IdentityURL:        getEnv("IDENTITY_URL", ""),
		IdentityServiceKey: getEnv("IDENTITY_SERVICE_KEY", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		PinSessionTTL: getEnvDuration("PIN_SESSION_TTL", 8*time.Hour),

		PasswordMaxAttempts:   getEnvInt("LOCKOUT_PASSWORD_MAX_ATTEMPTS", 5),
		PasswordLockoutWindow: getEnvDuration("LOCKOUT_PASSWORD_WINDOW", 15*time.Minute),
		PinMaxAttempts:        getEnvInt("LOCKOUT_PIN_MAX_ATTEMPTS", 3),
		PinLockoutWindow:      getEnvDuration("LOCKOUT_PIN_WINDOW", 5*time.Minute),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.IdentityURL == "" {
		log.Fatal("[FATAL] IDENTITY_URL tanımlanmamış! Şifreli giriş kimlik sağlayıcı olmadan çalışmaz.")
	}
	if cfg.IdentityServiceKey == "" {
		log.Fatal("[FATAL] IDENTITY_SERVICE_KEY tanımlanmamış!")
	}
	if cfg.RedisAddr == "" {
		log.Println("[WARN] REDIS_ADDR tanımlı değil; lockout sayaçları süreç içinde tutulacak. Birden fazla instance çalıştırıyorsan her instance kendi deneme bütçesini tutar.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("[WARN] %s geçersiz, varsayılan kullanılıyor: %d", key, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("[WARN] %s geçersiz, varsayılan kullanılıyor: %s", key, def)
	}
	return def
}
