package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server  ServerConfig
		Backend BackendConfig
		Session SessionConfig
		Views   ViewsConfig
		Alert   AlertConfig
		Mock    MockConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		ShutdownTimeout    time.Duration
		DisableRequestLogs bool
	}

	BackendConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		Token string
	}

	ViewsConfig struct {
		// TermCountPolicy names the exam.CountPolicy used for term summaries.
		TermCountPolicy  string
		ParallelPageLoad bool
	}

	AlertConfig struct {
		AutoHide time.Duration
	}

	MockConfig struct {
		Address              string
		SecretKey            string
		TokenExpirationDelta time.Duration
	}
)

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
// Environment variables are prefixed with the current env, eg. DEV_BACKEND.BASEURL or DEV_DEBUG.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err = os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := fromViper(v)
	conf.Env = env
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "RepoProvas")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)

	v.SetDefault("backend.baseURL", "http://localhost:5000")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("session.token", "")

	v.SetDefault("views.termCountPolicy", "first-instructor")
	v.SetDefault("views.parallelPageLoad", false)

	v.SetDefault("alert.autoHide", 6*time.Second)

	v.SetDefault("mock.address", ":5000")
	v.SetDefault("mock.secretKey", "k3y-f0r-l0cal-m0ck-s3ss10ns-0nly")
	v.SetDefault("mock.tokenExpirationDelta", 7*24*time.Hour)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			DisableRequestLogs: v.GetBool("server.disableRequestLogs"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("backend.baseURL"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Session: SessionConfig{
			Token: v.GetString("session.token"),
		},
		Views: ViewsConfig{
			TermCountPolicy:  v.GetString("views.termCountPolicy"),
			ParallelPageLoad: v.GetBool("views.parallelPageLoad"),
		},
		Alert: AlertConfig{
			AutoHide: v.GetDuration("alert.autoHide"),
		},
		Mock: MockConfig{
			Address:              v.GetString("mock.address"),
			SecretKey:            v.GetString("mock.secretKey"),
			TokenExpirationDelta: v.GetDuration("mock.tokenExpirationDelta"),
		},
	}
}
