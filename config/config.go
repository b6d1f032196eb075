package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debugf("No .env file loaded: %v", err)
		}

		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("armory_base_url", "ARMORY_BASE_URL")
		viper.BindEnv("http_timeout", "HTTP_TIMEOUT")
		viper.BindEnv("command_timeout", "COMMAND_TIMEOUT")
		viper.BindEnv("cache_ttl", "CACHE_TTL")
		viper.BindEnv("rank_strict", "RANK_STRICT")
		viper.BindEnv("font_path", "FONT_PATH")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "zh_CN")
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("armory_base_url", "https://webapi.blizzard.cn/ow-armory-server/")
		viper.SetDefault("http_timeout", 10*time.Second)
		viper.SetDefault("command_timeout", 60*time.Second)
		viper.SetDefault("cache_ttl", 12*time.Hour)
		viper.SetDefault("rank_strict", false)
		viper.SetDefault("font_path", "")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
