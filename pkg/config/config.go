package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	Mysql     MysqlConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Jwt       JwtConfig       `mapstructure:"jwt"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Cart      CartConfig      `mapstructure:"cart"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
}

// ConsulConfig: registration is skipped when Address is empty.
type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type JwtConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RabbitMQConfig: integration events are not published when URL is empty.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// CartConfig selects the cart backend: "mysql" or "redis".
type CartConfig struct {
	Store string `mapstructure:"store"`
}

type RateLimitConfig struct {
	OrderQPS float64 `mapstructure:"order_qps"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "order-feedback-api")
	v.SetDefault("service.port", 8080)
	v.SetDefault("consul.address", "")
	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.dbname", "db_order_feedback")
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "order-feedback")
	v.SetDefault("jwt.audience", "order-feedback-clients")
	v.SetDefault("jwt.ttl", 3*time.Hour)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "order-feedback.events")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("cart.store", "mysql")
	v.SetDefault("ratelimit.order_qps", 0)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path. Every key can be overridden from the
// environment (jwt.secret -> JWT_SECRET); a .env file in the working directory
// is loaded first when present. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Jwt.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Jwt.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	switch c.Cart.Store {
	case "mysql", "redis":
	default:
		return errors.New("cart.store must be mysql or redis")
	}
	return nil
}
