package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de almacén soportados.
const (
	StoreDriverXLSX     = "xlsx"
	StoreDriverPostgres = "postgres"
)

// Drivers de impresora soportados.
const (
	PrinterDriverTCP   = "tcp"
	PrinterDriverSpool = "spool"
	PrinterDriverLog   = "log"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	Store      StoreConfig
	DB         DBConfig
	Identifier IdentifierConfig
	Printer    PrinterConfig
	JWT        JWTConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig configuración del system of record.
type StoreConfig struct {
	Driver    string // xlsx | postgres
	Path      string // ruta al libro .xlsx
	Sheet     string // hoja del ledger; vacío = primera hoja
	Bootstrap bool   // crear el libro con cabeceras si no existe
}

// DBConfig configuración de PostgreSQL (solo con STORE_DRIVER=postgres).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// IdentifierConfig configuración del registro de identificadores (QR IDs).
type IdentifierConfig struct {
	LogPath string // log append-only con los identificadores emitidos
}

// PrinterConfig configuración de la impresora de etiquetas.
type PrinterConfig struct {
	Driver   string // tcp | spool | log
	Name     string
	Addr     string // host:port para tcp (RAW 9100)
	SpoolDir string
	Timeout  time.Duration
	Encoding string // utf-8 | cp1252 | cp850 | iso-8859-1
}

// JWTConfig configuración de los tokens de estación. Secret vacío = API sin autenticación.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, STORE_PATH, PRINTER_ADDR, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "stock-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		Store: StoreConfig{
			Driver:    strings.ToLower(getString(v, "STORE_DRIVER", StoreDriverXLSX)),
			Path:      getString(v, "STORE_PATH", "MPH-Stock-Live.xlsx"),
			Sheet:     getString(v, "STORE_SHEET", ""),
			Bootstrap: getBool(v, "STORE_BOOTSTRAP", false),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "stock_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 4),
		},
		Identifier: IdentifierConfig{
			LogPath: getString(v, "IDENTIFIER_LOG_PATH", "QR-Codes.txt"),
		},
		Printer: PrinterConfig{
			Driver:   strings.ToLower(getString(v, "PRINTER_DRIVER", PrinterDriverLog)),
			Name:     getString(v, "PRINTER_NAME", "Godex RT700"),
			Addr:     getString(v, "PRINTER_ADDR", ""),
			SpoolDir: getString(v, "PRINTER_SPOOL_DIR", "spool"),
			Timeout:  time.Duration(getInt(v, "PRINTER_TIMEOUT_SECONDS", 5)) * time.Second,
			Encoding: strings.ToLower(getString(v, "PRINTER_ENCODING", "utf-8")),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60*12),
			Issuer:     getString(v, "JWT_ISSUER", "stock-ledger"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverXLSX:
		if c.Store.Path == "" {
			return fmt.Errorf("config: STORE_PATH requerido con STORE_DRIVER=xlsx")
		}
	case StoreDriverPostgres:
	default:
		return fmt.Errorf("config: STORE_DRIVER desconocido %q", c.Store.Driver)
	}
	switch c.Printer.Driver {
	case PrinterDriverTCP:
		if c.Printer.Addr == "" {
			return fmt.Errorf("config: PRINTER_ADDR requerido con PRINTER_DRIVER=tcp")
		}
	case PrinterDriverSpool, PrinterDriverLog:
	default:
		return fmt.Errorf("config: PRINTER_DRIVER desconocido %q", c.Printer.Driver)
	}
	if c.Identifier.LogPath == "" {
		return fmt.Errorf("config: IDENTIFIER_LOG_PATH requerido")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(v.GetString(key))
	if err != nil {
		return def
	}
	return b
}
