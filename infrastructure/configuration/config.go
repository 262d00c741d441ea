package configuration

import (
	"fmt"
	"os"

	"nosbot/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Gemini      Gemini      `json:"gemini"`
	Dispatch    Dispatch    `json:"dispatch"`
	RateLimit   RateLimit   `json:"rateLimit"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Gemini struct {
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

// Dispatch selects the async indexing trigger backend.
// Backend is "pubsub", "servicebus", or "" (synchronous indexing only).
type Dispatch struct {
	Backend      string `json:"backend"`
	ProjectID    string `json:"projectID"`
	Topic        string `json:"topic"`
	Subscription string `json:"subscription"`
	Namespace    string `json:"namespace"`
	Queue        string `json:"queue"`
}

type RateLimit struct {
	FreeDailyCredits int `json:"freeDailyCredits"`
	ProDailyCredits  int `json:"proDailyCredits"`
}

var C Config

func init() {
	LoadConfig()
}

// LoadConfig reads the config file into C and applies env overrides and
// defaults. Safe to call again after LoadEnvFromFile has filled the env.
func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}

	applyEnvOverrides(&C)
	applyDefaults(&C)
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Psql.Name = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Psql.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Database.Psql.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.Psql.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Psql.Password = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("DISPATCH_BACKEND"); v != "" {
		c.Dispatch.Backend = v
	}
}

func applyDefaults(c *Config) {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.Database.Psql.Port == "" {
		c.Database.Psql.Port = "5432"
	}
	if c.Database.Psql.SSLMode == "" {
		c.Database.Psql.SSLMode = "disable"
	}
	if c.RedisClient.Port == "" {
		c.RedisClient.Port = "6379"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-flash-latest"
	}
	if c.Gemini.Endpoint == "" {
		c.Gemini.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Dispatch.Topic == "" {
		c.Dispatch.Topic = "index-jobs"
	}
	if c.Dispatch.Subscription == "" {
		c.Dispatch.Subscription = "index-jobs-worker"
	}
	if c.Dispatch.Queue == "" {
		c.Dispatch.Queue = "index-jobs"
	}
	if c.RateLimit.FreeDailyCredits == 0 {
		c.RateLimit.FreeDailyCredits = 3
	}
	if c.RateLimit.ProDailyCredits == 0 {
		c.RateLimit.ProDailyCredits = 100
	}
}
