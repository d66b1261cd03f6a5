package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel               = "claude-sonnet-4-20250514"
	DefaultAtRiskThresholdDays = 5
	DefaultSessionDays         = 7

	DefaultImportSessionTTLMinutes    = 30
	DefaultImportSweepIntervalSeconds = 60
)

// DefaultConfiguration returns a configuration usable for local development.
func DefaultConfiguration() Configuration {
	return Configuration{
		Database: ConfigurationDatabase{
			Driver:        "sqlite",
			Path:          "coachkit.db",
			Port:          3306,
			DoAutoMigrate: true,
		},
		Server: ConfigurationServer{
			InternalPort:   8000,
			UploadFilepath: "uploads",
			TmpPath:        "tmp",
			FrontEndPath:   "frontend",
			SessionDays:    DefaultSessionDays,
			MaxUploadMB:    32,
		},
		MailServer: ConfigurationMailServer{
			SmtpPort: 587,
		},
		TextGeneration: ConfigurationTextGeneration{
			Provider:         "anthropic",
			Model:            DefaultModel,
			MappingMaxTokens: 500,
			MessageMaxTokens: 200,
			TimeoutSeconds:   60,
		},
		Import: ConfigurationImport{
			Mapper:               "auto",
			SessionTTLMinutes:    DefaultImportSessionTTLMinutes,
			SweepIntervalSeconds: DefaultImportSweepIntervalSeconds,
		},
		Coaching: ConfigurationCoaching{
			AtRiskThresholdDays: DefaultAtRiskThresholdDays,
		},
		Log: ConfigurationLog{
			Level: "info",
		},
	}
}

// LoadConfiguration reads path (JSON, or YAML for .yaml/.yml) over the
// defaults and then applies environment overrides. A missing file is not an error.
func LoadConfiguration(path string) (Configuration, error) {
	c := DefaultConfiguration()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return c, fmt.Errorf("read config %s: %w", path, err)
		default:
			ext := strings.ToLower(filepath.Ext(path))
			if ext == ".yaml" || ext == ".yml" {
				err = yaml.Unmarshal(data, &c)
			} else {
				err = json.Unmarshal(data, &c)
			}
			if err != nil {
				return c, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	GetEnvironmentConfig(&c)
	c.applyFallbacks()
	return c, nil
}

// applyFallbacks replaces durations that would stall the import sweeper or
// expire every session on creation.
func (c *Configuration) applyFallbacks() {
	if c.Import.SessionTTLMinutes <= 0 {
		c.Import.SessionTTLMinutes = DefaultImportSessionTTLMinutes
	}
	if c.Import.SweepIntervalSeconds <= 0 {
		c.Import.SweepIntervalSeconds = DefaultImportSweepIntervalSeconds
	}
}

func GetEnvironmentConfig(c *Configuration) {
	if os.Getenv("DATABASE_DRIVER") != "" {
		c.Database.Driver = os.Getenv("DATABASE_DRIVER")
	}
	if os.Getenv("DATABASE_HOST") != "" {
		c.Database.Host = os.Getenv("DATABASE_HOST")
	}
	if os.Getenv("DATABASE_DATABASE") != "" {
		c.Database.Database = os.Getenv("DATABASE_DATABASE")
	}
	if os.Getenv("DATABASE_USER") != "" {
		c.Database.User = os.Getenv("DATABASE_USER")
	}
	if os.Getenv("DATABASE_PASSWORD") != "" {
		c.Database.Password = os.Getenv("DATABASE_PASSWORD")
	}
	if os.Getenv("DATABASE_PORT") != "" {
		c.Database.Port, _ = strconv.Atoi(os.Getenv("DATABASE_PORT"))
	}
	if os.Getenv("DATABASE_PATH") != "" {
		c.Database.Path = os.Getenv("DATABASE_PATH")
	}
	if os.Getenv("DATABASE_DO_AUTO_MIGRATE") != "" {
		c.Database.DoAutoMigrate, _ = strconv.ParseBool(os.Getenv("DATABASE_DO_AUTO_MIGRATE"))
	}
	if os.Getenv("DATABASE_DEBUG") != "" {
		c.Database.Debug, _ = strconv.ParseBool(os.Getenv("DATABASE_DEBUG"))
	}

	if os.Getenv("SERVER_HOSTNAME") != "" {
		c.Server.Hostname = os.Getenv("SERVER_HOSTNAME")
	}
	if os.Getenv("SERVER_INTERNAL_PORT") != "" {
		c.Server.InternalPort, _ = strconv.Atoi(os.Getenv("SERVER_INTERNAL_PORT"))
	}
	if os.Getenv("SERVER_WITH_SSL") != "" {
		c.Server.WithSSL, _ = strconv.ParseBool(os.Getenv("SERVER_WITH_SSL"))
	}
	if os.Getenv("SERVER_SSL_CERT_FILE") != "" {
		c.Server.SSLCertFile = os.Getenv("SERVER_SSL_CERT_FILE")
	}
	if os.Getenv("SERVER_SSL_KEY_FILE") != "" {
		c.Server.SSLKeyFile = os.Getenv("SERVER_SSL_KEY_FILE")
	}
	if os.Getenv("SERVER_UPLOAD_FILEPATH") != "" {
		c.Server.UploadFilepath = os.Getenv("SERVER_UPLOAD_FILEPATH")
	}
	if os.Getenv("SERVER_TMP_PATH") != "" {
		c.Server.TmpPath = os.Getenv("SERVER_TMP_PATH")
	}
	if os.Getenv("SERVER_DELIVER_FRONT_END") != "" {
		c.Server.DeliverFrontEnd, _ = strconv.ParseBool(os.Getenv("SERVER_DELIVER_FRONT_END"))
	}
	if os.Getenv("SERVER_FRONT_END_PATH") != "" {
		c.Server.FrontEndPath = os.Getenv("SERVER_FRONT_END_PATH")
	}
	if os.Getenv("SERVER_SESSION_DAYS") != "" {
		c.Server.SessionDays, _ = strconv.Atoi(os.Getenv("SERVER_SESSION_DAYS"))
	}
	if os.Getenv("SERVER_COOKIE_SECURE") != "" {
		c.Server.CookieSecure, _ = strconv.ParseBool(os.Getenv("SERVER_COOKIE_SECURE"))
	}
	if os.Getenv("SERVER_MAX_UPLOAD_MB") != "" {
		c.Server.MaxUploadMB, _ = strconv.ParseInt(os.Getenv("SERVER_MAX_UPLOAD_MB"), 10, 64)
	}

	if os.Getenv("MAIL_SERVER_SMTP_HOST") != "" {
		c.MailServer.SmtpHost = os.Getenv("MAIL_SERVER_SMTP_HOST")
	}
	if os.Getenv("MAIL_SERVER_SMTP_PORT") != "" {
		c.MailServer.SmtpPort, _ = strconv.Atoi(os.Getenv("MAIL_SERVER_SMTP_PORT"))
	}
	if os.Getenv("MAIL_SERVER_SMTP_USERNAME") != "" {
		c.MailServer.SmtpUsername = os.Getenv("MAIL_SERVER_SMTP_USERNAME")
	}
	if os.Getenv("MAIL_SERVER_SMTP_PASSWORD") != "" {
		c.MailServer.SmtpPassword = os.Getenv("MAIL_SERVER_SMTP_PASSWORD")
	}
	if os.Getenv("MAIL_SERVER_FROM") != "" {
		c.MailServer.From = os.Getenv("MAIL_SERVER_FROM")
	}

	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		c.TextGeneration.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if os.Getenv("TEXTGEN_API_KEY") != "" {
		c.TextGeneration.APIKey = os.Getenv("TEXTGEN_API_KEY")
	}
	if os.Getenv("TEXTGEN_BASE_URL") != "" {
		c.TextGeneration.BaseURL = os.Getenv("TEXTGEN_BASE_URL")
	}
	if os.Getenv("TEXTGEN_MODEL") != "" {
		c.TextGeneration.Model = os.Getenv("TEXTGEN_MODEL")
	}
	if os.Getenv("TEXTGEN_TIMEOUT_SECONDS") != "" {
		c.TextGeneration.TimeoutSeconds, _ = strconv.Atoi(os.Getenv("TEXTGEN_TIMEOUT_SECONDS"))
	}

	if os.Getenv("IMPORT_MAPPER") != "" {
		c.Import.Mapper = os.Getenv("IMPORT_MAPPER")
	}
	if os.Getenv("IMPORT_SESSION_TTL_MINUTES") != "" {
		c.Import.SessionTTLMinutes, _ = strconv.Atoi(os.Getenv("IMPORT_SESSION_TTL_MINUTES"))
	}
	if os.Getenv("IMPORT_SWEEP_INTERVAL_SECONDS") != "" {
		c.Import.SweepIntervalSeconds, _ = strconv.Atoi(os.Getenv("IMPORT_SWEEP_INTERVAL_SECONDS"))
	}

	if os.Getenv("COACHING_AT_RISK_THRESHOLD_DAYS") != "" {
		c.Coaching.AtRiskThresholdDays, _ = strconv.Atoi(os.Getenv("COACHING_AT_RISK_THRESHOLD_DAYS"))
	}

	if os.Getenv("LOG_LEVEL") != "" {
		c.Log.Level = os.Getenv("LOG_LEVEL")
	}
}
