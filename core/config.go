package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		AllowedOrigins            []string
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SyncConfig configures the shared-document store and its mirror backends.
	// A mirror is enabled iff its credentials are set.
	SyncConfig struct {
		APIKey          string // shared secret expected in X-API-Key
		LocalPath       string // local JSON snapshot of the document
		CacheTTL        time.Duration
		MaxRetries      int
		MaxBackoff      time.Duration
		MaxDocumentSize int64
		RemoteURL       string // another deployment's /v1/sync endpoint
		GistID          string
		GistToken       string
		BinID           string
		BinKey          string
	}

	Config struct {
		AppName                   string
		Env                       string // DEV (default), TEST, QA, PROD
		Build                     string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		DefaultFromEmail          mail.Address
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration
		SendgridAPIKey            string
		RollbarToken              string
		OpenAIAPIKey              string

		Server   ServerConfig
		Database DatabaseConfig
		Sync     SyncConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Enabled reports whether the relational backend is configured;
// when false the app falls back to the local document store.
func (c DatabaseConfig) Enabled() bool { return c.Name != "" }

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("appName", "Bukhari Academy")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("secretKey", "x2m)d1r$academy+bukhari=8uz&k0q!h7w^p5(t_e9z#y4v*s6")
	v.SetDefault("defaultFromEmail", "noreply@bukhari.uz")
	v.SetDefault("frontendBaseURL", "https://bukhari-academy.vercel.app")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.allowedOrigins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://bukhari-academy.vercel.app",
	})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")

	v.SetDefault("sync.localPath", filepath.Join("data", "database.json"))
	v.SetDefault("sync.cacheTTL", 30*time.Second)
	v.SetDefault("sync.maxRetries", 3)
	v.SetDefault("sync.maxBackoff", 5*time.Second)
	v.SetDefault("sync.maxDocumentSize", int64(10*1024*1024))

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  env == "TEST",
		SecretKey:                 v.GetString("secretKey"),
		DefaultFromEmail:          mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		OpenAIAPIKey:              v.GetString("openaiApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Addr:                      v.GetString("server.addr"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			AllowedOrigins:            v.GetStringSlice("server.allowedOrigins"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Sync: SyncConfig{
			APIKey:          v.GetString("sync.apiKey"),
			LocalPath:       v.GetString("sync.localPath"),
			CacheTTL:        v.GetDuration("sync.cacheTTL"),
			MaxRetries:      v.GetInt("sync.maxRetries"),
			MaxBackoff:      v.GetDuration("sync.maxBackoff"),
			MaxDocumentSize: v.GetInt64("sync.maxDocumentSize"),
			RemoteURL:       v.GetString("sync.remoteURL"),
			GistID:          v.GetString("sync.gistID"),
			GistToken:       v.GetString("sync.gistToken"),
			BinID:           v.GetString("sync.binID"),
			BinKey:          v.GetString("sync.binKey"),
		},
	}

	checks := []vala.Checker{
		vala.StringNotEmpty(conf.SecretKey, "secretKey"),
		vala.StringNotEmpty(conf.Server.Addr, "server.addr"),
		vala.StringNotEmpty(conf.Sync.LocalPath, "sync.localPath"),
		vala.GreaterThan(int(conf.Sync.CacheTTL), 0, "sync.cacheTTL"),
		vala.GreaterThan(conf.Sync.MaxRetries, 0, "sync.maxRetries"),
		vala.GreaterThan(int(conf.Sync.MaxDocumentSize), 0, "sync.maxDocumentSize"),
	}
	if !conf.Database.Enabled() {
		// the document store serves the sync endpoint; it must not run
		// without its shared secret
		checks = append(checks, vala.StringNotEmpty(conf.Sync.APIKey, "sync.apiKey"))
	}
	if err := vala.BeginValidation().Validate(checks...).Check(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}
