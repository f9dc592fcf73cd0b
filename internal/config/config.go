package config

import "os"

// Config holds all environment-driven settings, loaded once at startup and
// passed explicitly to the components that need them.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string
	BaseURL  string

	// Auth
	AuthJWTSecret string
	AuthIssuer    string
	CronSecret    string

	// Email (Mailgun)
	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string

	// Push (VAPID)
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string

	// Upload storage
	S3Endpoint    string
	S3Bucket      string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
	UploadDir     string
	UploadURLBase string

	// Backup
	BackupBucket     string
	BackupPassphrase string

	// Enrichment
	ScrapingEnabled bool
	RapidAPIKey     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:     getEnv("HOMEKEEP_PORT", "8080"),
		DBPath:   getEnv("HOMEKEEP_DB_PATH", "homekeep.db"),
		LogLevel: getEnv("HOMEKEEP_LOG_LEVEL", "info"),
		BaseURL:  getEnv("HOMEKEEP_BASE_URL", "http://localhost:8080"),

		AuthJWTSecret: os.Getenv("HOMEKEEP_AUTH_JWT_SECRET"),
		AuthIssuer:    getEnv("HOMEKEEP_AUTH_ISSUER", "homekeep-auth"),
		CronSecret:    os.Getenv("HOMEKEEP_CRON_SECRET"),

		MailgunDomain:      os.Getenv("HOMEKEEP_MAILGUN_DOMAIN"),
		MailgunAPIKey:      os.Getenv("HOMEKEEP_MAILGUN_API_KEY"),
		MailgunSenderEmail: getEnv("HOMEKEEP_MAILGUN_SENDER", "alerts@homekeep.app"),
		MailgunSenderName:  getEnv("HOMEKEEP_MAILGUN_SENDER_NAME", "Homekeep"),

		VAPIDPublicKey:  os.Getenv("HOMEKEEP_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HOMEKEEP_VAPID_PRIVATE_KEY"),
		PushSubscriber:  getEnv("HOMEKEEP_PUSH_SUBSCRIBER", "mailto:noreply@homekeep.app"),

		S3Endpoint:    os.Getenv("HOMEKEEP_S3_ENDPOINT"),
		S3Bucket:      os.Getenv("HOMEKEEP_S3_BUCKET"),
		S3Region:      getEnv("HOMEKEEP_S3_REGION", "auto"),
		S3AccessKey:   os.Getenv("HOMEKEEP_S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("HOMEKEEP_S3_SECRET_KEY"),
		S3PublicURL:   os.Getenv("HOMEKEEP_S3_PUBLIC_URL"),
		UploadDir:     getEnv("HOMEKEEP_UPLOAD_DIR", ""),
		UploadURLBase: getEnv("HOMEKEEP_UPLOAD_URL_BASE", "/uploads"),

		BackupBucket:     os.Getenv("HOMEKEEP_BACKUP_BUCKET"),
		BackupPassphrase: os.Getenv("HOMEKEEP_BACKUP_PASSPHRASE"),

		ScrapingEnabled: getEnv("HOMEKEEP_SCRAPING_ENABLED", "false") == "true",
		RapidAPIKey:     os.Getenv("HOMEKEEP_RAPIDAPI_KEY"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
