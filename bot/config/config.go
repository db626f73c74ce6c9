package config

import (
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/xor-shift/chanserv/common/ratelimit"
)

const (
	EnvDatabase = "CHANSERV_DB"
	EnvReadOnly = "CHANSERV_READONLY"
	EnvLogLevel = "CHANSERV_LOG_LEVEL"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Database string `yaml:"database"`
	//Prefix is stripped from incoming lines before command lookup, empty means every line is a command
	Prefix string `yaml:"prefix"`

	Services  Settings         `yaml:"services"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`
	Terminal  TerminalConfig   `yaml:"terminal"`
}

type TerminalConfig struct {
	Ident string `yaml:"ident"`
	Color bool   `yaml:"color"`
}

//Settings is handed to every command invocation by value, see Clone
type Settings struct {
	ServiceNick      string `yaml:"nick"`
	UseStrictPrivMsg bool   `yaml:"use_strict_privmsg"`
	ReadOnly         bool   `yaml:"read_only"`
	//users at or above this permission level are services operators
	OperLevel int `yaml:"oper_level"`
	//retired SET option -> the command that replaced it
	DeprecatedSetOptions map[string]string `yaml:"deprecated_set_options"`
}

func (s Settings) Clone() Settings {
	deprecated := make(map[string]string, len(s.DeprecatedSetOptions))
	for k, v := range s.DeprecatedSetOptions {
		deprecated[strings.ToUpper(k)] = v
	}
	s.DeprecatedSetOptions = deprecated
	return s
}

//StrictPrivMsgString is how users are told to address the service, "/msg " or "/"
func (s Settings) StrictPrivMsgString() string {
	if s.UseStrictPrivMsg {
		return "/msg "
	}
	return "/"
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Database: "chanserv.db",
		Prefix:   "",
		Services: Settings{
			ServiceNick:      "ChanServ",
			UseStrictPrivMsg: true,
			ReadOnly:         false,
			OperLevel:        100,
			DeprecatedSetOptions: map[string]string{
				"MLOCK": "MODE LOCK",
			},
		},
		RateLimit: ratelimit.Config{
			UserCacheSize:   256,
			GlobalMaxTokens: 64,
			GlobalPerToken:  50 * time.Millisecond,
			UserMaxTokens:   8,
			UserPerToken:    time.Second,
		},
		Terminal: TerminalConfig{
			Ident: "operator",
			Color: false,
		},
	}
}

//Load reads the YAML file at path over the defaults, then applies environment overrides (a .env file is honoured if present).
//An empty path skips the file
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		log.WithError(err).Warn("failed to load .env file")
	}

	cfg := Default()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}

		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Services = cfg.Services.Clone()

	return cfg, cfg.Validate()
}

func (cfg *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDatabase); ok && v != "" {
		cfg.Database = v
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	if v, ok := os.LookupEnv(EnvReadOnly); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvReadOnly)
		}
		cfg.Services.ReadOnly = b
	}

	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Services.ServiceNick == "" {
		return errors.New("services.nick must not be empty")
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}

	if cfg.RateLimit.UserMaxTokens <= 0 || cfg.RateLimit.GlobalMaxTokens <= 0 {
		return errors.New("rate_limit token counts must be positive")
	}

	return nil
}

//SetupLogging applies the configured level to the standard logrus logger
func (cfg *Config) SetupLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("invalid log level %s, defaulting to info", cfg.LogLevel)
		log.SetLevel(log.InfoLevel)
	}
}
