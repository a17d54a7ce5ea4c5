package config

import (
	"fmt"
	"os"
	"raid-bot/internal/logger"
	"raid-bot/internal/recruit"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config は環境変数から読み込む起動時の設定
type Config struct {
	Token            string
	GuildID          string
	Channels         map[recruit.Category]recruit.ChannelID
	StoreDriver      string
	DatabaseURL      string
	DatabaseMaxConns int32
	SQLitePath       string
	Location         *time.Location
	LogLevel         logger.Level
	LogPretty        bool
}

// Error は起動を中止すべき設定の不備
type Error struct {
	Missing []string
	Invalid []string
}

func (e *Error) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("必須の環境変数が設定されていません: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("環境変数の値が不正です: %s", strings.Join(e.Invalid, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Load は現在のプロセス環境から設定を読み込む
// 不足/不正な値はまとめて*Errorで返す
func Load() (*Config, error) {
	cfg := &Config{
		Channels:         make(map[recruit.Category]recruit.ChannelID, 2),
		StoreDriver:      StoreDriverPostgres,
		DatabaseMaxConns: 4,
		SQLitePath:       "./data/bot.db",
		LogLevel:         logger.InfoLevel,
		LogPretty:        true,
	}

	var missing, invalid []string

	required := func(key string) string {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg.Token = required("DISCORD_BOT_TOKEN")
	cfg.GuildID = required("TARGET_GUILD_ID")
	cfg.Channels[recruit.CategoryGlassRaid] = recruit.ChannelID(required("GLASS_RAID_CHANNEL_ID"))
	cfg.Channels[recruit.CategoryAbyss] = recruit.ChannelID(required("ABYSS_CHANNEL_ID"))

	if driver := strings.TrimSpace(os.Getenv("STORE_DRIVER")); driver != "" {
		switch driver {
		case StoreDriverPostgres, StoreDriverSQLite:
			cfg.StoreDriver = driver
		default:
			invalid = append(invalid, "STORE_DRIVER")
		}
	}

	if cfg.StoreDriver == StoreDriverPostgres {
		cfg.DatabaseURL = required("DATABASE_URL")
	}

	if connsValue := strings.TrimSpace(os.Getenv("DATABASE_MAX_CONNS")); connsValue != "" {
		conns, err := strconv.ParseInt(connsValue, 10, 32)
		if err != nil || conns <= 0 {
			invalid = append(invalid, "DATABASE_MAX_CONNS")
		} else {
			cfg.DatabaseMaxConns = int32(conns)
		}
	}

	if path := strings.TrimSpace(os.Getenv("SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	timezone := "Asia/Tokyo"
	if value := strings.TrimSpace(os.Getenv("TIMEZONE")); value != "" {
		timezone = value
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		invalid = append(invalid, "TIMEZONE")
	} else {
		cfg.Location = location
	}

	if levelValue := strings.TrimSpace(os.Getenv("LOG_LEVEL")); levelValue != "" {
		cfg.LogLevel = logger.ParseLevel(levelValue)
	}

	if prettyValue := strings.TrimSpace(os.Getenv("LOG_PRETTY")); prettyValue != "" {
		pretty, err := strconv.ParseBool(prettyValue)
		if err != nil {
			invalid = append(invalid, "LOG_PRETTY")
		} else {
			cfg.LogPretty = pretty
		}
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return nil, &Error{Missing: missing, Invalid: invalid}
	}

	return cfg, nil
}
