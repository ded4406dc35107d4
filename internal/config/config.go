// Package config loads and validates the controller configuration from a
// yaml file, .env and environment variables. Schedule windows and the
// timezone are parsed here, before any state machine starts: a malformed
// window is a startup failure, never a silent default.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"home-monitor/internal/schedule"
)

// Config is the full controller configuration.
type Config struct {
	Timezone string `mapstructure:"timezone"`

	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Web      WebConfig      `mapstructure:"web"`
	Trains   TrainsConfig   `mapstructure:"trains"`
	Freezer  FreezerConfig  `mapstructure:"freezer"`
	Security SecurityConfig `mapstructure:"security"`
	Devices  DevicesConfig  `mapstructure:"devices"`
	Buttons  ButtonsConfig  `mapstructure:"buttons"`
	Water    WaterConfig    `mapstructure:"water"`
	Queue    QueueConfig    `mapstructure:"queue"`

	// Announcements are cron-scheduled spoken reports.
	Announcements []Announcement `mapstructure:"announcements"`

	// Dispatch maps an event kind to its actuator action.
	Dispatch map[string]DispatchAction `mapstructure:"dispatch"`

	// Parsed at load time, not read from the file.
	Location      *time.Location    `mapstructure:"-"`
	TrainSched    schedule.Schedule `mapstructure:"-"`
	FreezerSched  schedule.Schedule `mapstructure:"-"`
	SecuritySched schedule.Schedule `mapstructure:"-"`
}

type MQTTConfig struct {
	Broker    string `mapstructure:"broker"`
	ClientID  string `mapstructure:"client_id"`
	BaseTopic string `mapstructure:"base_topic"` // zigbee2mqtt root topic
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Stream       string `mapstructure:"stream"`
	StreamMaxLen int64  `mapstructure:"stream_max_len"`
}

type DatabaseConfig struct {
	// URL enables the Postgres event history when set.
	URL string `mapstructure:"url"`
}

type WebConfig struct {
	Addr     string `mapstructure:"addr"`
	MDNSName string `mapstructure:"mdns_name"`
}

type TrainsConfig struct {
	GatewayURL  string        `mapstructure:"gateway_url"`
	Token       string        `mapstructure:"token"` // or NATIONAL_RAIL_TOKEN env
	FromStation string        `mapstructure:"from_station"`
	ToStation   string        `mapstructure:"to_station"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Schedule    []string      `mapstructure:"schedule"` // indication windows
}

type FreezerConfig struct {
	Sensor        string        `mapstructure:"sensor"` // zigbee2mqtt friendly name
	TempThreshold float64       `mapstructure:"temp_threshold"`
	OfflineAfter  time.Duration `mapstructure:"offline_after"`
	Interval      time.Duration `mapstructure:"interval"`
	Schedule      []string      `mapstructure:"schedule"` // offline-indication hours
}

type SecurityConfig struct {
	ContactSensor string        `mapstructure:"contact_sensor"`
	Interval      time.Duration `mapstructure:"interval"`
	Schedule      []string      `mapstructure:"schedule"` // armed hours
}

type DevicesConfig struct {
	IndicatorBulb string `mapstructure:"indicator_bulb"`
	Siren         string `mapstructure:"siren"`
	LightGroup    string `mapstructure:"light_group"`
	Button        string `mapstructure:"button"` // zigbee button friendly name
}

type ButtonsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Chip    string `mapstructure:"chip"`
	Line    int    `mapstructure:"line"`
}

type WaterConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type QueueConfig struct {
	Size int `mapstructure:"size"`
}

// Announcement is a cron-scheduled report. Kind selects what the worker
// says: "hot_water", "train_delays" or "text" (literal Text).
type Announcement struct {
	Cron string `mapstructure:"cron"`
	Kind string `mapstructure:"kind"`
	Text string `mapstructure:"text"`
}

// DispatchAction describes what the dispatch loop does for one event kind.
// Empty fields mean no action of that sort.
type DispatchAction struct {
	Bulb     string `mapstructure:"bulb"`     // colour name or "off"
	Siren    string `mapstructure:"siren"`    // "start" or "stop"
	Announce string `mapstructure:"announce"` // literal text to speak
}

// Load reads config.yaml (plus .env and environment) and validates it.
func Load() (*Config, error) {
	// .env is optional; it carries secrets like NATIONAL_RAIL_TOKEN.
	if err := godotenv.Load(); err != nil {
		log.Printf("CONFIG: no .env file loaded: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/home-monitor")
	viper.AutomaticEnv()
	viper.BindEnv("trains.token", "NATIONAL_RAIL_TOKEN")
	viper.BindEnv("database.url", "DATABASE_URL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		log.Printf("CONFIG: no config file found, using defaults and environment")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize parses the timezone and schedule windows, failing fast on any
// malformed value.
func (c *Config) finalize() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.TrainSched, err = schedule.Parse(loc, c.Trains.Schedule); err != nil {
		return fmt.Errorf("trains schedule: %w", err)
	}
	if c.FreezerSched, err = schedule.Parse(loc, c.Freezer.Schedule); err != nil {
		return fmt.Errorf("freezer schedule: %w", err)
	}
	if c.SecuritySched, err = schedule.Parse(loc, c.Security.Schedule); err != nil {
		return fmt.Errorf("security schedule: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("timezone", "Europe/London")

	viper.SetDefault("mqtt.broker", "tcp://127.0.0.1:1883")
	viper.SetDefault("mqtt.client_id", "home-monitor")
	viper.SetDefault("mqtt.base_topic", "zigbee2mqtt")

	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("redis.stream", "home-monitor:events")
	viper.SetDefault("redis.stream_max_len", 1000)

	viper.SetDefault("web.addr", ":5069")
	viper.SetDefault("web.mdns_name", "home-monitor.local")

	viper.SetDefault("trains.gateway_url", "https://huxley2.azurewebsites.net")
	viper.SetDefault("trains.from_station", "WAT")
	viper.SetDefault("trains.to_station", "WIN")
	viper.SetDefault("trains.interval", "10m")
	viper.SetDefault("trains.timeout", "10s")
	viper.SetDefault("trains.schedule", []string{"05:30-07:00"})

	viper.SetDefault("freezer.sensor", "Freezer Sensor")
	viper.SetDefault("freezer.temp_threshold", -10.0)
	viper.SetDefault("freezer.offline_after", "21m")
	viper.SetDefault("freezer.interval", "1s")
	viper.SetDefault("freezer.schedule", []string{"08:00-22:00"})

	viper.SetDefault("security.contact_sensor", "Front Door")
	viper.SetDefault("security.interval", "1s")
	viper.SetDefault("security.schedule", []string{"23:00-05:00"})

	viper.SetDefault("devices.indicator_bulb", "Sitt Colour")
	viper.SetDefault("devices.siren", "Siren")
	viper.SetDefault("devices.light_group", "Sitt Group")
	viper.SetDefault("devices.button", "Black Button")

	viper.SetDefault("buttons.enabled", false)
	viper.SetDefault("buttons.chip", "gpiochip0")
	viper.SetDefault("buttons.line", 4)

	viper.SetDefault("water.addr", "127.0.0.1:6789")
	viper.SetDefault("water.timeout", "2s")

	viper.SetDefault("queue.size", 100)

	// The stock actuator mapping: bulb colours and siren control matching
	// the original deployment. Overridable per event kind in config.yaml.
	viper.SetDefault("dispatch", map[string]map[string]string{
		"FREEZER_ALARM_TEMP_NORMAL":          {"bulb": "off"},
		"FREEZER_ALARM_TEMP_HIGH":            {"bulb": "blue"},
		"FREEZER_ALARM_DISABLED":             {"bulb": "off"},
		"FREEZER_ALARM_SENSOR_OFFLINE_DAY":   {"bulb": "green"},
		"FREEZER_ALARM_SENSOR_OFFLINE_NIGHT": {"bulb": "off"},
		"TRAIN_DELAYS":                       {"bulb": "red"},
		"TRAIN_NO_DELAYS":                    {"bulb": "off"},
		"ALARM_TRIGGERED":                    {"siren": "start"},
		"ALARM_DEACTIVATED":                  {"siren": "stop", "announce": "Alarm deactivated"},
		"ALARM_ACTIVATED":                    {"announce": "Alarm reactivated"},
	})
}
