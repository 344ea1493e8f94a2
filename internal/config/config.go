package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Nombres de las colecciones (worksheets) del sistema
const (
	CollectionCertificados   = "certificados"
	CollectionCertificadosQR = "certificados_qr"
	CollectionCompras        = "compras"
	CollectionMenciones      = "menciones"
	CollectionClientes       = "clientes"
)

// Config representa la configuración del servidor
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Sheets    SheetsConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Email     EmailConfig
	Storage   StorageConfig
	Inngest   InngestConfig
	Admin     AdminConfig
	Render    RenderConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos de usuarios
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SheetsConfig representa la configuración del almacén remoto (Google Sheets)
type SheetsConfig struct {
	// CertificadosID es el spreadsheet con certificados, CERTIFICADOS QR,
	// compras y CLIENTES; MencionesID es el spreadsheet de MENCIONES
	CertificadosID     string
	MencionesID        string
	CredentialsFile    string
	CredentialsJSON    string
	CacheTTL           time.Duration
	WorksheetNames     map[string]string
}

// JWTConfig representa la configuración de JWT
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// RateLimitConfig representa la configuración de rate limiting
type RateLimitConfig struct {
	PerMinute int
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de email
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
}

// StorageConfig representa la configuración de almacenamiento de PDFs
type StorageConfig struct {
	Type            string // "local" o "s3"
	Path            string
	BaseURL         string
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
}

// AdminConfig representa el usuario administrador inicial
type AdminConfig struct {
	Email    string
	Password string
}

// RenderConfig representa la configuración del renderizador de certificados
type RenderConfig struct {
	TemplatePath string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	if err := godotenv.Load(); err != nil {
		// No es crítico si no existe el archivo .env
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("BASE_URL", "https://centroprofesionaldocente.com"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "certificados"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Sheets: SheetsConfig{
			CertificadosID:  getEnv("GOOGLE_SHEET_ID", ""),
			MencionesID:     getEnv("GOOGLE_SHEET_MENCIONES_ID", ""),
			CredentialsFile: getEnv("GOOGLE_SA_FILE", ""),
			CredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			CacheTTL:        getEnvAsDuration("SHEETS_CACHE_TTL", 5*time.Minute),
			WorksheetNames: map[string]string{
				CollectionCertificados:   getEnv("WORKSHEET_CERTIFICADOS", "certificados"),
				CollectionCertificadosQR: getEnv("WORKSHEET_CERTIFICADOS_QR", "CERTIFICADOS QR"),
				CollectionCompras:        getEnv("WORKSHEET_COMPRAS", "compras"),
				CollectionMenciones:      getEnv("WORKSHEET_MENCIONES", "MENCIONES"),
				CollectionClientes:       getEnv("WORKSHEET_CLIENTES", "CLIENTES"),
			},
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev_key_change_this"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 30*time.Minute),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "local"),
			Path:            getEnv("STORAGE_PATH", "./uploads/certificados"),
			BaseURL:         getEnv("BASE_STORAGE_URL", ""),
			Bucket:          getEnv("STORAGE_BUCKET", "certificados"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "certificados-service"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Render: RenderConfig{
			TemplatePath: getEnv("TEMPLATE_PATH", "./plantillas/plantilla.png"),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// VerifyURL construye la URL pública de verificación de un certificado.
// El formato debe preservarse exactamente: {baseURL}/consulta/{codigo}.
func (c *Config) VerifyURL(codigo string) string {
	return c.Server.BaseURL + "/consulta/" + codigo
}
