package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Lobby      Lobby   `yaml:"lobby"`
	Channel    Channel `yaml:"channel"`
	Profile    Profile `yaml:"profile"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Lobby struct {
	// NameAttempts bounds how many generated names are tried before the uuid fallback.
	NameAttempts int `yaml:"name-attempts" env:"LOBBY_NAME_ATTEMPTS" env-default:"32"`
}

type Channel struct {
	SendBuffer int `yaml:"send-buffer" env:"CHANNEL_SEND_BUFFER" env-default:"64"`
}

type Profile struct {
	TTL time.Duration `yaml:"ttl" env:"PROFILE_TTL" env-default:"720h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// MustLoadEnv - load configuration from the environment only, for runs without a config file.
func MustLoadEnv() *Config {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(fmt.Errorf("unable to read environment: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
