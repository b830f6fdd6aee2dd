package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Mqtt              *MqttConfig
	Serial            *SerialConfig
	PowerPin          string        `env:"POWER_PIN" envDefault:"GPIO17"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"1m"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"INFO"`
}

type MqttConfig struct {
	Host         string `env:"MQTT_HOST"`
	Username     string `env:"MQTT_USER"`
	Password     string `env:"MQTT_PASS"`
	ClientID     string `env:"MQTT_CLIENT_ID" envDefault:"groundlink"`
	CommandTopic string `env:"MQTT_COMMAND_TOPIC" envDefault:"commands"`
	StatusTopic  string `env:"MQTT_STATUS_TOPIC" envDefault:"status"`
}

type SerialConfig struct {
	Port     string `env:"SERIAL_PORT" envDefault:"/dev/ttyS0"`
	BaudRate int    `env:"SERIAL_BAUD" envDefault:"9600"`
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset. CLI flags may override individual fields afterwards.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Mqtt:   &MqttConfig{},
		Serial: &SerialConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
