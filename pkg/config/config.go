package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host       string `json:"host"`       // The domain name of the server.
	ServerAddr string `json:"serverAddr"` // The address the server endpoint binds to.

	Auth struct {
		AccessTokenSecret     string `json:"accessTokenSecret"`
		RefreshTokenSecret    string `json:"refreshTokenSecret"`
		AccessTokenTTLMinutes int    `json:"accessTokenTTLMinutes"`
		RefreshTokenTTLHours  int    `json:"refreshTokenTTLHours"`
		LDAP                  LDAP   `json:"ldap"`
	} `json:"auth"`

	Postgres struct {
		Host            string    `json:"host"`
		Port            string    `json:"port"`
		DBName          string    `json:"dbname"`
		User            string    `json:"user"`
		Password        string    `json:"password"`
		SSLMode         string    `json:"sslmode"`
		TimeZone        string    `json:"TimeZone"`
		Replicas        []Replica `json:"replicas"` // Read-only replicas used by reports.
		MaxIdleConns    int       `json:"maxIdleConns"`
		MaxOpenConns    int       `json:"maxOpenConns"`
		SlowThresholdMs int       `json:"slowThresholdMs"` // Queries slower than this are logged as warnings.
	} `json:"postgres"`

	ObjectStorage struct {
		BaseURL       string `json:"baseURL"`
		Bucket        string `json:"bucket"`
		SigningSecret string `json:"signingSecret"`
		ExpirySeconds int    `json:"expirySeconds"`
	} `json:"objectStorage"`

	SMTP struct {
		Enable   bool   `json:"enable"`
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`

	CORS struct {
		Origins []string `json:"origins"`
	} `json:"cors"`

	AuditRetention struct {
		Spec string `json:"spec"` // Cron expression, empty disables the job.
		Days int    `json:"days"`
	} `json:"auditRetention"`

	RiskRescore struct {
		Spec string `json:"spec"` // Cron expression, empty disables the job.
	} `json:"riskRescore"`

	Reports struct {
		TopRisks int `json:"topRisks"` // Size of the executive dashboard risk list.
	} `json:"reports"`
}

type LDAP struct {
	Enable   bool   `json:"enable"`
	Address  string `json:"address"`
	UserName string `json:"userName"`
	Password string `json:"password"`
	SearchDN string `json:"searchDN"`
}

type Replica struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads ./etc/debug-config.yaml (or ATLAS_DEBUG_CONFIG_PATH) in
// debug mode and the mounted /etc/atlas/config.yaml otherwise.
func initConfig() *Config {
	var configPath string
	if IsDebugMode() {
		if os.Getenv("ATLAS_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("ATLAS_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/atlas/config.yaml"
	}
	klog.Info("config path: ", configPath)

	config, err := Load(configPath)
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	return config
}

// Load parses the YAML file at filePath and fills unset values with defaults.
func Load(filePath string) (*Config, error) {
	config := &Config{}
	if err := readConfig(filePath, config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return config, nil
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

const (
	defaultServerAddr      = ":8088"
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 10
	defaultSlowThresholdMs = 200
	defaultAccessTTL       = 60
	defaultRefreshTTL      = 168
	defaultURLExpiry       = 900
	defaultRetentionDays   = 365
	defaultTopRisks        = 10
)

func (c *Config) setDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = defaultServerAddr
	}
	if c.Postgres.MaxIdleConns <= 0 {
		c.Postgres.MaxIdleConns = defaultMaxIdleConns
	}
	if c.Postgres.MaxOpenConns <= 0 {
		c.Postgres.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Postgres.SlowThresholdMs <= 0 {
		c.Postgres.SlowThresholdMs = defaultSlowThresholdMs
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		c.Auth.AccessTokenTTLMinutes = defaultAccessTTL
	}
	if c.Auth.RefreshTokenTTLHours <= 0 {
		c.Auth.RefreshTokenTTLHours = defaultRefreshTTL
	}
	if c.ObjectStorage.ExpirySeconds <= 0 {
		c.ObjectStorage.ExpirySeconds = defaultURLExpiry
	}
	if c.AuditRetention.Days <= 0 {
		c.AuditRetention.Days = defaultRetentionDays
	}
	if c.Reports.TopRisks <= 0 {
		c.Reports.TopRisks = defaultTopRisks
	}
}
