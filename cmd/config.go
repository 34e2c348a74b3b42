package main

import (
	"fmt"
	"os"
	"strings"

	"talent-radar/internal/logger"
	"talent-radar/internal/notifier"
	"talent-radar/internal/preference"
	"talent-radar/internal/scheduler"
	"talent-radar/internal/scoring"
	"talent-radar/internal/storage"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "RECRUIT"

// AppConfig 应用配置。
type AppConfig struct {
	Server      ServerConfig         `yaml:"server"`
	Database    storage.Config       `yaml:"database"`
	Email       notifier.EmailConfig `yaml:"email"`
	Screening   scoring.Config       `yaml:"screening"`
	Preferences preference.Config    `yaml:"preferences"`
	Notifier    notifier.Config      `yaml:"notifier"`
	Scheduler   scheduler.Config     `yaml:"scheduler"`
	Log         logger.Config        `yaml:"log"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// loadConfig 读取 YAML 配置，文件不存在时使用默认值，随后应用 RECRUIT_* 环境变量覆盖。
func loadConfig(path string) (AppConfig, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "config.yaml"
	}

	var cfg AppConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv 用环境变量覆盖连接串与密钥，键名如 RECRUIT_DATABASE_DSN。
func applyEnv(cfg *AppConfig) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setString("server.addr", &cfg.Server.Addr)
	setString("database.driver", &cfg.Database.Driver)
	setString("database.dsn", &cfg.Database.DSN)
	setString("database.path", &cfg.Database.Path)
	setString("email.host", &cfg.Email.Host)
	setString("email.username", &cfg.Email.Username)
	setString("email.password", &cfg.Email.Password)
	setString("email.from", &cfg.Email.From)
	if p := v.GetInt("email.port"); p > 0 {
		cfg.Email.Port = p
	}
	if v.IsSet("log.debug") {
		cfg.Log.Debug = v.GetBool("log.debug")
	}
	if v.IsSet("log.json") {
		cfg.Log.JSON = v.GetBool("log.json")
	}
}
