package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	JWT      JWTConfig
	Reward   RewardConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port    int
	Env     string // "development", "production"
	BaseURL string // public URL, used in redirect links on the result page
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// GatewayConfig holds credentials for the two supported payment gateways.
type GatewayConfig struct {
	A GatewayACfg
	B GatewayBCfg
}

type GatewayACfg struct {
	BaseURL   string
	SecretKey string
}

type GatewayBCfg struct {
	BaseURL     string
	ProductCode string
	SecretKey   string
}

type JWTConfig struct {
	Secret string
}

type RewardConfig struct {
	// PointsPerUnit is the number of currency units that earn one point.
	PointsPerUnit int
}

type NotifyConfig struct {
	BotToken  string
	ChannelID string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REWARD_POINTS_PER_UNIT", 10)

	cfg := &Config{
		Server: ServerConfig{
			Port:    viper.GetInt("APP_PORT"),
			Env:     viper.GetString("APP_ENV"),
			BaseURL: viper.GetString("APP_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			A: GatewayACfg{
				BaseURL:   viper.GetString("GATEWAY_A_BASE_URL"),
				SecretKey: viper.GetString("GATEWAY_A_SECRET_KEY"),
			},
			B: GatewayBCfg{
				BaseURL:     viper.GetString("GATEWAY_B_BASE_URL"),
				ProductCode: viper.GetString("GATEWAY_B_PRODUCT_CODE"),
				SecretKey:   viper.GetString("GATEWAY_B_SECRET_KEY"),
			},
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Reward: RewardConfig{
			PointsPerUnit: viper.GetInt("REWARD_POINTS_PER_UNIT"),
		},
		Notify: NotifyConfig{
			BotToken:  viper.GetString("NOTIFY_BOT_TOKEN"),
			ChannelID: viper.GetString("NOTIFY_CHANNEL_ID"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set, authenticated API routes will reject all tokens")
	}

	return cfg, nil
}

// LoadDatabaseOnly loads just the database section, used by the
// --bootstrap-db maintenance path.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
