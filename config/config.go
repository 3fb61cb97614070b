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
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Credits  CreditsConfig  `mapstructure:"credits"`
	FairUse  FairUseConfig  `mapstructure:"fair_use"`
	Share    ShareConfig    `mapstructure:"share"`
	Products ProductsConfig `mapstructure:"products"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	GenAPI   GenAPIConfig   `mapstructure:"gen_api"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
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

type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type QueueConfig struct {
	ProcessQueue string `mapstructure:"process_queue"`
	MaxWorkers   int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// CreditsConfig 积分体系配置：各服务消耗、每月赠送、会员软限制与奖励
type CreditsConfig struct {
	Costs                map[string]int `mapstructure:"costs"`
	DefaultCost          int            `mapstructure:"default_cost"`
	FreeMonthlyCredits   int            `mapstructure:"free_monthly_credits"`
	InitialSignupCredits int            `mapstructure:"initial_signup_credits"`
	PremiumSoftLimit     int            `mapstructure:"premium_soft_limit"`
	PremiumUpgradeBonus  int            `mapstructure:"premium_upgrade_bonus"`
	PremiumYearlyBonus   int            `mapstructure:"premium_yearly_bonus"`
}

// FairUseConfig 公平使用软限流配置（仅提示，不拦截）
type FairUseConfig struct {
	SoftLimit     int `mapstructure:"soft_limit"`
	CooldownLimit int `mapstructure:"cooldown_limit"`
}

// ShareConfig 分享奖励配置
type ShareConfig struct {
	Platforms            []string `mapstructure:"platforms"`
	RequiredHashtag      string   `mapstructure:"required_hashtag"`
	MaxRewardsPerDay     int      `mapstructure:"max_rewards_per_day"`
	CooldownHours        int      `mapstructure:"cooldown_hours"`
	RewardCredits        int      `mapstructure:"reward_credits"`
	VerifyTimeoutSeconds int      `mapstructure:"verify_timeout_seconds"`
}

// ProductsConfig 应用内商品：product_id -> 积分数量
type ProductsConfig struct {
	CreditPacks map[string]int `mapstructure:"credit_packs"`
}

type PricingConfig struct {
	MonthlyPrice float64 `mapstructure:"monthly_price"`
	YearlyPrice  float64 `mapstructure:"yearly_price"`
	Currency     string  `mapstructure:"currency"`
	TrialDays    int     `mapstructure:"trial_days"`
}

// GenAPIConfig 外部图片生成服务配置
type GenAPIConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
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

	setDefaults()

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

	return &cfg, nil
}

// setDefaults 业务常量默认值，config.yaml 可覆盖
func setDefaults() {
	viper.SetDefault("credits.costs", map[string]int{
		"photo_restore":    1,
		"memory_merge":     2,
		"cinematic_filter": 3,
	})
	viper.SetDefault("credits.default_cost", 1)
	viper.SetDefault("credits.free_monthly_credits", 3)
	viper.SetDefault("credits.initial_signup_credits", 3)
	viper.SetDefault("credits.premium_soft_limit", 100)
	viper.SetDefault("credits.premium_upgrade_bonus", 50)
	viper.SetDefault("credits.premium_yearly_bonus", 200)

	viper.SetDefault("fair_use.soft_limit", 100)
	viper.SetDefault("fair_use.cooldown_limit", 150)

	viper.SetDefault("share.platforms", []string{"instagram", "tiktok"})
	viper.SetDefault("share.required_hashtag", "#everwithapp")
	viper.SetDefault("share.max_rewards_per_day", 3)
	viper.SetDefault("share.cooldown_hours", 6)
	viper.SetDefault("share.reward_credits", 1)
	viper.SetDefault("share.verify_timeout_seconds", 5)

	viper.SetDefault("products.credit_packs", map[string]int{
		"credits_5":  5,
		"credits_10": 10,
		"credits_25": 25,
		"credits_50": 50,
	})

	viper.SetDefault("pricing.monthly_price", 9.99)
	viper.SetDefault("pricing.yearly_price", 69.99)
	viper.SetDefault("pricing.currency", "GBP")
	viper.SetDefault("pricing.trial_days", 7)

	viper.SetDefault("queue.process_queue", "process_jobs")
	viper.SetDefault("queue.max_workers", 4)

	viper.SetDefault("gen_api.poll_interval_seconds", 3)
	viper.SetDefault("gen_api.timeout_seconds", 300)
}
