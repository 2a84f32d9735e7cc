package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Uploads  string `yaml:"uploads" json:"uploads"`
	DemoData bool   `yaml:"demo_data" json:"demo_data"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type AdminConfig struct {
	Username string `yaml:"username" json:"username"`
	// Password is compared in constant time; PasswordHash, when set, takes
	// precedence and must be a bcrypt hash.
	Password     string `yaml:"password" json:"password"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
}

type DBConfig struct {
	Type   string `yaml:"type" json:"type"`
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Name   string `yaml:"name" json:"name"`
	User   string `yaml:"user" json:"user"`
	Passwd string `yaml:"passwd" json:"passwd"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Admin    AdminConfig `yaml:"admin" json:"admin"`
	Database DBConfig    `yaml:"database" json:"database"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
}

// UploadDir resolves the asset upload directory against the workdir.
func (c *AppConfig) UploadDir() string {
	if filepath.IsAbs(c.System.Uploads) {
		return c.System.Uploads
	}
	return filepath.Join(c.System.Workdir, c.System.Uploads)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "orderdesk",
		Location: "Local",
		Workdir:  "/var/orderdesk",
		Uploads:  "uploads",
		DemoData: false,
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "",
	},
	Admin: AdminConfig{
		Username: "admin",
		Password: "orderdesk",
	},
	Database: DBConfig{
		Type:   "sqlite",
		Host:   "127.0.0.1",
		Port:   5432,
		Name:   "orderdesk",
		User:   "postgres",
		Passwd: "",
		Debug:  false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/orderdesk/orderdesk.log",
	},
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt(v)
	}
}

// LoadConfig reads the yaml configuration file and applies ORDERDESK_*
// environment overrides on top. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("ORDERDESK_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("ORDERDESK_SYSTEM_UPLOADS", &cfg.System.Uploads)
	setEnvBoolValue("ORDERDESK_SYSTEM_DEMO_DATA", &cfg.System.DemoData)
	setEnvBoolValue("ORDERDESK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("ORDERDESK_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("ORDERDESK_WEB_PORT", &cfg.Web.Port)
	setEnvValue("ORDERDESK_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("ORDERDESK_ADMIN_USERNAME", &cfg.Admin.Username)
	setEnvValue("ORDERDESK_ADMIN_PASSWORD", &cfg.Admin.Password)
	setEnvValue("ORDERDESK_ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)

	setEnvValue("ORDERDESK_DB_TYPE", &cfg.Database.Type)
	setEnvValue("ORDERDESK_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("ORDERDESK_DB_PORT", &cfg.Database.Port)
	setEnvValue("ORDERDESK_DB_NAME", &cfg.Database.Name)
	setEnvValue("ORDERDESK_DB_USER", &cfg.Database.User)
	setEnvValue("ORDERDESK_DB_PASSWD", &cfg.Database.Passwd)
	setEnvBoolValue("ORDERDESK_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("ORDERDESK_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("ORDERDESK_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("ORDERDESK_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
