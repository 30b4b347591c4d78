package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/cmd"
	"github.com/hearthhq/hearth/config"
)

//go:embed templates/email/template.html
var templates embed.FS

var (
	Version   = "?"
	BuildTime = "?"
	GitCommit = "-"
	GitRef    = "-"
)

func main() {
	//version info
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("hearth %s, built %s from %s (%s)", Version, BuildTime, GitCommit, GitRef)
		return
	}
	logger := bootstrap()
	defer func() {
		_ = logger.Sync()

	}()
	cmd.TopLevelLogger = logger
	emailFolder, err := fs.Sub(templates, "templates/email")
	if err != nil {
		logger.Fatal("Unable to load embedded email templates", zap.Error(err))
	}
	cmd.EmailTemplates = emailFolder
	cmd.Execute()
}

func bootstrap() *zap.Logger {
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}
	cfg := zap.NewProductionConfig()
	if r := os.Getenv("DEBUG_LOG"); r == "true" {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		log.Fatal(err)
	}
	cobra.OnInitialize(func() { initConfig(logger) })
	return logger
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.address", "")
	viper.SetDefault("smtp.enabled", false)
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.dsn", "hearth.db")
	viper.SetDefault("behaviour.name", "hearth")
	viper.SetDefault("behaviour.invite-expiry", "168h")
	viper.SetDefault("behaviour.default-join-role", "other")
	viper.SetDefault("jwt.alg", "HS256")
	viper.SetDefault("manage-endpoint.enable", false)
}

func initConfig(logger *zap.Logger) {
	bind := func(from string, to string) {
		err := viper.BindEnv(to, from)
		if err != nil {
			logger.Error("unable to bindenv", zap.String("from", from), zap.String(to, to), zap.Error(err))
		}

	}
	setDefaults()
	bind("PORT", "server.port")
	bind("ADDRESS", "server.address")

	bind("HEARTH_PORT", "server.port")
	bind("HEARTH_ADDRESS", "server.address")

	bind("HEARTH_SMTP_ENABLED", "smtp.enabled")
	bind("HEARTH_SMTP_HOST", "smtp.host")
	bind("HEARTH_SMTP_PORT", "smtp.port")
	bind("HEARTH_SMTP_USERNAME", "smtp.username")
	bind("HEARTH_SMTP_PASSWORD", "smtp.password")
	bind("HEARTH_SMTP_DISPLAYNAME", "smtp.display-name")
	bind("HEARTH_SMTP_ADDRESS", "smtp.address")

	bind("HEARTH_DATABASE_TYPE", "database.type")
	bind("HEARTH_DATABASE_DSN", "database.dsn")

	bind("HEARTH_BEHAVIOUR_NAME", "behaviour.name")
	bind("HEARTH_BEHAVIOUR_SITE", "behaviour.site")
	bind("HEARTH_BEHAVIOUR_INVITE_EXPIRY", "behaviour.invite-expiry")
	bind("HEARTH_BEHAVIOUR_DEFAULT_JOIN_ROLE", "behaviour.default-join-role")

	bind("HEARTH_JWT_ALG", "jwt.alg")
	bind("HEARTH_JWT_HMAC_SIGNING_KEY", "jwt.hmac-signing-key")
	bind("HEARTH_JWT_HMAC_SIGNING_KEY_FILE", "jwt.hmac-signing-key-file")

	bind("HEARTH_MANAGE_ENDPOINT_ENABLE", "manage-endpoint.enable")
	bind("HEARTH_MANAGE_ENDPOINT_CORS_ALLOWED_ORIGINS", "manage-endpoint.cors.allowed-origins")
	bind("HEARTH_MANAGE_ENDPOINT_CORS_ALLOWED_METHODS", "manage-endpoint.cors.allowed-methods")
	bind("HEARTH_MANAGE_ENDPOINT_CORS_ALLOW_CREDENTIALS", "manage-endpoint.cors.allow-credentials")

	if cmd.ConfigFileLocation != "" {
		logger.Debug("Using supplied config file", zap.String("file", cmd.ConfigFileLocation))
		viper.SetConfigFile(cmd.ConfigFileLocation)
	} else {
		path, err := os.Getwd()
		if err != nil {
			logger.Warn("Unable to get current working dir", zap.Error(err))
		}
		cobra.CheckErr(err)
		viper.AddConfigPath(path)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		logger.Debug("Looking for default config file")
	}
	//precedence: environment overwrites yml
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Debug("No confg file loaded")
	} else {
		logger.Debug("Config file loaded", zap.String("file", viper.ConfigFileUsed()))
	}

	conf := &config.Configuration{}
	err := viper.Unmarshal(conf)
	if err != nil {
		logger.Fatal("Unable to unmarshall config", zap.Error(err))
	}
	logger.Debug("Validating final config")
	if err = conf.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	cmd.LoadedConfig = conf
}
