package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ChatConfig identifies the platform endpoint and the guild fixtures the bot
// operates on.
type ChatConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	EventsURL         string `mapstructure:"events_url"`
	Token             string `mapstructure:"token"`
	GuildID           string `mapstructure:"guild_id"`
	TicketCategoryID  string `mapstructure:"ticket_category_id"`
	ArchiveCategoryID string `mapstructure:"archive_category_id"`
	LogChannelID      string `mapstructure:"log_channel_id"`
	SupportRoleID     string `mapstructure:"support_role_id"`
}

// Category is one entry of the ticket panel.
type Category struct {
	ID          string `mapstructure:"id"`
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`
	Emoji       string `mapstructure:"emoji"`
	Color       string `mapstructure:"color"`
}

// TicketsConfig carries the lifecycle timings. All are tunable; defaults
// mirror the operational values the bot shipped with.
type TicketsConfig struct {
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	InactivityThreshold time.Duration `mapstructure:"inactivity_threshold"`
	AutoCloseGrace      time.Duration `mapstructure:"auto_close_grace"`
	PingCooldown        time.Duration `mapstructure:"ping_cooldown"`
	Categories          []Category    `mapstructure:"categories"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Tickets TicketsConfig `mapstructure:"tickets"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Tickets.SweepInterval == 0 {
		globalConfig.Tickets.SweepInterval = time.Minute
	}
	if globalConfig.Tickets.InactivityThreshold == 0 {
		globalConfig.Tickets.InactivityThreshold = 20 * time.Minute
	}
	if globalConfig.Tickets.AutoCloseGrace == 0 {
		globalConfig.Tickets.AutoCloseGrace = 30 * time.Minute
	}
	if globalConfig.Tickets.PingCooldown == 0 {
		globalConfig.Tickets.PingCooldown = 5 * time.Minute
	}
}

func GetConfig() *Config {
	return &globalConfig
}

// CategoryByID returns the panel category with the given id.
func (c *Config) CategoryByID(id string) (Category, bool) {
	for _, cat := range c.Tickets.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}
