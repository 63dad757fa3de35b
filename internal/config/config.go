package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBDriver string
	DBDSN    string

	JWTSecret string

	// shared secret for the admin surface (X-API-Key header)
	ServiceAPIKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// rabbitMQ; empty RabbitURL falls back to the in-process dispatcher
	RabbitURL   string
	RabbitQueue string

	// recipient handle baked into the paypal.me redirect URL
	PayPalHandle string

	ListenAddr string
}

func Load() Config {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "app:apppass@tcp(127.0.0.1:3306)/pulsehustle?charset=utf8mb4&parseTime=true&loc=Local"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "match_jobs"
	}

	paypalHandle := os.Getenv("PAYPAL_HANDLE")
	if paypalHandle == "" {
		paypalHandle = "invinciblelude"
	}

	listen := os.Getenv("LISTEN_ADDR")
	if listen == "" {
		listen = ":8080"
	}

	return Config{
		DBDriver: driver,
		DBDSN:    dsn,

		JWTSecret:     secret,
		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		PayPalHandle: paypalHandle,

		ListenAddr: listen,
	}
}
