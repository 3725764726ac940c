// Package config loads blurtune settings from an optional YAML file,
// BLURTUNE_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. BLURTUNE_SERVER_ADDR.
const EnvPrefix = "BLURTUNE"

// Config holds the main configuration for the application.
type Config struct {
	Server  Server         `mapstructure:"server"`
	Catalog Catalog        `mapstructure:"catalog"`
	Encoder Encoder        `mapstructure:"encoder"`
	Log     logging.Config `mapstructure:"log"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	Addr         string        `mapstructure:"addr" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" default:"10s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"60s"`
	MaxSessions  int           `mapstructure:"max_sessions" default:"256" validate:"min=1"`
}

// Catalog selects where source images come from.
type Catalog struct {
	Backend string `mapstructure:"backend" default:"dir" validate:"oneof=dir minio"`
	Dir     string `mapstructure:"dir" default:"./images"`
	Workers int    `mapstructure:"workers" validate:"min=0"` // 0 = NumCPU
	Minio   Minio  `mapstructure:"minio"`
}

// Minio holds the object storage catalog settings.
type Minio struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Encoder holds codec settings.
type Encoder struct {
	// CwebpPath is the cwebp binary; empty searches PATH.
	CwebpPath string `mapstructure:"cwebp_path"`
}

// NewViper returns a viper instance reading file, or blurtune.yaml from
// ./config or the working directory when file is empty.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("blurtune")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	return v
}

// Load reads the config file if there is one, applies defaults and
// environment overrides and validates the result. A missing file is only
// an error when it was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	const op = "config.load"

	explicit := v.ConfigFileUsed() != ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, apperr.New(apperr.InvalidConfiguration, op, err)
		}
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, apperr.New(apperr.InvalidConfiguration, op, err)
	}
	registerDefaults(v, "", reflect.ValueOf(cfg))

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.New(apperr.InvalidConfiguration, op, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// registerDefaults makes viper aware of every key so that environment
// variables are honoured even when the file omits them.
func registerDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		fv := val.Field(i)
		if fv.Kind() == reflect.Struct && fv.Type() != reflect.TypeOf(time.Duration(0)) {
			registerDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(catalogRules, Catalog{})
	return v
}

// catalogRules requires the minio section only when it is selected.
func catalogRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Catalog)
	switch c.Backend {
	case "dir":
		if c.Dir == "" {
			sl.ReportError(c.Dir, "Dir", "dir", "required_for_backend", "dir")
		}
	case "minio":
		if c.Minio.Endpoint == "" {
			sl.ReportError(c.Minio.Endpoint, "Minio.Endpoint", "endpoint", "required_for_backend", "minio")
		}
		if c.Minio.Bucket == "" {
			sl.ReportError(c.Minio.Bucket, "Minio.Bucket", "bucket", "required_for_backend", "minio")
		}
	}
}

// Validate checks cfg and reports every violation in one error.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.New(apperr.InvalidConfiguration, "config.validate", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return apperr.Errorf(apperr.InvalidConfiguration, "config.validate", "%s", strings.Join(msgs, "; "))
}
