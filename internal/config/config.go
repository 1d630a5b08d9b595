package config

import "os"

type Config struct {
	HTTPAddr      string
	MySQLDSN      string
	RedisAddr     string
	MigrationsDir string
}

func Load() Config {
	return Config{
		HTTPAddr:      getEnv("POS_HTTP_ADDR", ":8080"),
		MySQLDSN:      getEnv("POS_MYSQL_DSN", "root:root@tcp(localhost:3306)/pos?parseTime=true"),
		RedisAddr:     getEnv("POS_REDIS_ADDR", "localhost:6379"),
		MigrationsDir: getEnv("POS_MIGRATIONS_DIR", "migrations"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
