package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort      string
	LogMode      string
	RateLimitMax int

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret   string
	RabbitMQURL string

	MediaBackend string
	MediaRoot    string
	MediaURL     string

	AWSS3Bucket  string
	AWSS3Region  string
	AWSAccessKey string
	AWSSecretKey string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("RATE_LIMIT_MAX", 50)
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=foodgram port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("AWS_S3_BUCKET", "")
	v.SetDefault("AWS_S3_REGION", "")
	v.SetDefault("AWS_ACCESS_KEY", "")
	v.SetDefault("AWS_SECRET_KEY", "")
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first; real environment
// variables win over it.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:        v.GetString("APP_PORT"),
		LogMode:        v.GetString("LOG_MODE"),
		RateLimitMax:   v.GetInt("RATE_LIMIT_MAX"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		MediaBackend:   v.GetString("MEDIA_BACKEND"),
		MediaRoot:      v.GetString("MEDIA_ROOT"),
		MediaURL:       v.GetString("MEDIA_URL"),
		AWSS3Bucket:    v.GetString("AWS_S3_BUCKET"),
		AWSS3Region:    v.GetString("AWS_S3_REGION"),
		AWSAccessKey:   v.GetString("AWS_ACCESS_KEY"),
		AWSSecretKey:   v.GetString("AWS_SECRET_KEY"),
	}
}
