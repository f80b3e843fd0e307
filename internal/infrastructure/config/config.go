package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MEATSHOP"

// Config 全局配置结构
// 使用Viper管理配置，支持YAML文件和环境变量覆盖
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Order     OrderConfig     `mapstructure:"order"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Security  SecurityConfig  `mapstructure:"security"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GRPCConfig gRPC健康检查服务
type GRPCConfig struct {
	Port int `mapstructure:"port"` // 0表示不启动
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC
// loc参数需要URL编码（Europe/Moscow → Europe%2FMoscow）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// OrderConfig 下单相关配置
type OrderConfig struct {
	// Timezone 订单号日期段使用的时区（"当天"的定义）
	Timezone string `mapstructure:"timezone"`
	// MaxAllocationAttempts 订单号冲突/死锁时整笔事务的最大尝试次数
	MaxAllocationAttempts int `mapstructure:"max_allocation_attempts"`
	// CacheTTL 订单详情在Redis中的缓存时间
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Location 解析时区，空字符串视为UTC
func (o OrderConfig) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(o.Timezone)
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC，如localhost:4317
	Insecure    bool   `mapstructure:"insecure"` // 明文连接collector，仅限本地开发
}

// RateLimitConfig 固定窗口限流
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Window        time.Duration `mapstructure:"window"`
	Requests      int           `mapstructure:"requests"`
	AdminRequests int           `mapstructure:"admin_requests"`
}

type SecurityConfig struct {
	// EncryptionKey 收货信息加密口令（派生密钥用）
	EncryptionKey string `mapstructure:"encryption_key"`
	// BotSecret 机器人调用/sessions接口时携带的共享密钥
	BotSecret string `mapstructure:"bot_secret"`
}

// CacheConfig 进程内缓存（商品目录）
type CacheConfig struct {
	LifeWindow     time.Duration `mapstructure:"life_window"`
	HardMaxCacheMB int           `mapstructure:"hard_max_cache_mb"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量MEATSHOP_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如MEATSHOP_DATABASE_PASSWORD）
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

// LoadFrom 从指定目录加载配置
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 环境特定配置（如config.prod.yaml）
	if env := os.Getenv(envPrefix + "_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 环境变量绑定（MEATSHOP_DATABASE_PASSWORD → database.password）
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("order.timezone", "Europe/Moscow")
	v.SetDefault("order.max_allocation_attempts", 5)
	v.SetDefault("order.cache_ttl", 10*time.Minute)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.admin_requests", 100)
	v.SetDefault("cache.life_window", 5*time.Minute)
	v.SetDefault("cache.hard_max_cache_mb", 64)
	v.SetDefault("tracing.service_name", "meatshop-api")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("rabbitmq.exchange", "meatshop.events")
	v.SetDefault("rabbitmq.queue", "meatshop.order.notifications")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if _, err := cfg.Order.Location(); err != nil {
		return fmt.Errorf("无效的订单时区 %q: %w", cfg.Order.Timezone, err)
	}

	if cfg.Order.MaxAllocationAttempts < 1 {
		return fmt.Errorf("order.max_allocation_attempts必须>=1: %d", cfg.Order.MaxAllocationAttempts)
	}

	if cfg.Server.Mode == "release" {
		if cfg.JWT.Secret == "" || cfg.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("生产环境必须修改JWT密钥")
		}
		if cfg.Security.EncryptionKey == "" {
			return fmt.Errorf("生产环境必须配置security.encryption_key")
		}
		if cfg.Security.BotSecret == "" {
			return fmt.Errorf("生产环境必须配置security.bot_secret")
		}
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("限流配置无效: requests=%d window=%s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	return nil
}
