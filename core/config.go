package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName          string
	Env              string // DEV (local; default), TEST, QA, PROD
	Build            string
	Debug            bool
	TestMode         bool
	SecretKey        string
	FrontendBaseURL  string
	SendgridApiKey   string
	RollbarToken     string
	defaultFromEmail string

	Server struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Database struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Advice struct {
		Endpoint string
		APIKey   string
		Model    string
		Timeout  time.Duration
	}
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed with the value of ENV (ex: DEV_SECRETKEY) and may be set in `config/.env.<env>`.
func NewConfig() *Config {
	return newConfig(viper.New(), os.Getenv("ENV"))
}

func newConfig(v *viper.Viper, env string) *Config {
	env = strings.ToUpper(env)
	if env == "" {
		env = "DEV"
	}

	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Classroom")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("secretKey", "v7dk+4vz_2r$m(u8c!kq9ohx=b6f1t@j&e0^yw3sg5pn)la*i")
	v.SetDefault("frontendBaseURL", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "Classroom <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "classroom")
	v.SetDefault("database.user", "classroom")
	v.SetDefault("database.password", "classroom")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("advice.endpoint", "")
	v.SetDefault("advice.apiKey", "")
	v.SetDefault("advice.model", "gpt-4o-mini")
	v.SetDefault("advice.timeout", 20*time.Second)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}

	conf.Server.Host = v.GetString("server.host")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwtRefreshExpirationDelta")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Advice.Endpoint = v.GetString("advice.endpoint")
	conf.Advice.APIKey = v.GetString("advice.apiKey")
	conf.Advice.Model = v.GetString("advice.model")
	conf.Advice.Timeout = v.GetDuration("advice.timeout")

	return conf
}

// DefaultFromEmail parses the configured sender address, falling back to a bare address.
func (c *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(c.defaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// DBAddress returns the database "host:port".
func (c *Config) DBAddress() string {
	return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
}
