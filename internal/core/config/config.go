package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	ShutdownSec     int
	MaxBodyBytes    int64
	MaxInFlight     int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

type Auth struct {
	BcryptCost int
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	ProductTTL int    `mapstructure:"product_ttl_sec"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Search struct {
	DefaultLimit int
	MaxLimit     int // 0 表示不钳制
}

type DB struct {
	Driver             string
	DSN                string
	Host               string
	Port               int
	Username           string
	Password           string
	Name               string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowThresholdMs    int
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	Auth   Auth
	DB     DB
	Search Search
	Redis  Redis `mapstructure:"redis"`
	Kafka  Kafka `mapstructure:"kafka"`
}

// legacyEnv 兼容原部署的环境变量名
var legacyEnv = map[string]string{
	"db.host":       "DB_HOST",
	"db.port":       "DB_PORT",
	"db.username":   "DB_USER",
	"db.password":   "DB_PASSWORD",
	"db.name":       "DB_NAME",
	"jwt.secret":    "JWT_SECRET",
	"app.http.port": "PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ecommerce-api")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.shutdownsec", 10)
	v.SetDefault("app.http.maxbodybytes", 1<<20)
	v.SetDefault("app.http.maxinflight", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("auth.bcryptcost", 10)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.slowthresholdms", 200)

	v.SetDefault("search.defaultlimit", 10)
	v.SetDefault("search.maxlimit", 0)

	v.SetDefault("redis.product_ttl_sec", 300)
	v.SetDefault("kafka.topic", "product_events")

	// 无默认值的键也要登记，Unmarshal 才会读到对应环境变量
	for _, k := range []string{
		"db.dsn", "db.host", "db.username", "db.password", "db.name",
		"jwt.secret", "jwt.issuer", "log.file.filename",
		"redis.addr", "redis.password",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("jwt.leewaysec", 0)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.compress", false)
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{})
}

// Load 读取可选的 YAML 文件，再由环境变量覆盖（APP_ 前缀 + 旧变量名）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// 逗号分隔的 broker 列表
	if len(c.Kafka.Brokers) == 1 && strings.Contains(c.Kafka.Brokers[0], ",") {
		c.Kafka.Brokers = strings.Split(c.Kafka.Brokers[0], ",")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret is required (JWT_SECRET)")
	}
	if c.App.HTTP.Port <= 0 {
		return fmt.Errorf("config: invalid http port %d", c.App.HTTP.Port)
	}
	return nil
}
