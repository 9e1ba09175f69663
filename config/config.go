package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Payway   PaywayConfig   `mapstructure:"payway"`
	Content  ContentConfig  `mapstructure:"content"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Email    EmailConfig    `mapstructure:"email"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"` // 支付回调的外网地址前缀
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type PaywayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ContentConfig struct {
	Price         float64 `mapstructure:"price"`          // 单次观看价格
	CreatorShare  float64 `mapstructure:"creator_share"`  // 创作者分成比例（0-1）
	RetentionDays int     `mapstructure:"retention_days"` // 内容保留天数
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`            // 最大文件大小（字节）
	AllowedAudioTypes []string `mapstructure:"allowed_audio_types"` // 允许的音频 Content-Type
	AllowedVideoTypes []string `mapstructure:"allowed_video_types"` // 允许的视频 Content-Type
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type QueueConfig struct {
	BlobDeleteQueue string `mapstructure:"blob_delete_queue"` // 云存储删除失败重试队列
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"` // 后台结算接口密钥，留空则禁用后台接口
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults 填充业务默认值
func applyDefaults(cfg *Config) {
	if cfg.Content.Price <= 0 {
		cfg.Content.Price = 5.0
	}
	if cfg.Content.CreatorShare <= 0 || cfg.Content.CreatorShare > 1 {
		cfg.Content.CreatorShare = 0.5
	}
	if cfg.Content.RetentionDays <= 0 {
		cfg.Content.RetentionDays = 14
	}
	if cfg.Upload.MaxSize <= 0 {
		cfg.Upload.MaxSize = 500 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedAudioTypes) == 0 {
		cfg.Upload.AllowedAudioTypes = []string{"audio/mpeg", "audio/wav", "audio/ogg"}
	}
	if len(cfg.Upload.AllowedVideoTypes) == 0 {
		cfg.Upload.AllowedVideoTypes = []string{"video/mp4", "video/quicktime", "video/x-msvideo", "video/webm"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Admin-Key"}
	}
	if cfg.Payway.TimeoutSeconds <= 0 {
		cfg.Payway.TimeoutSeconds = 30
	}
	if cfg.Queue.BlobDeleteQueue == "" {
		cfg.Queue.BlobDeleteQueue = "blob_delete_retry"
	}
}
