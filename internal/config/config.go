package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"drawonary.db"`
	Game              Game   `yaml:"game"`
	DefaultDeck       Deck   `yaml:"default-deck"`
}

// Deck optionally seeds a word deck at startup so a fresh install has
// something to play with.
type Deck struct {
	ID    string   `yaml:"id" env-default:"default"`
	Name  string   `yaml:"name" env-default:"Default"`
	Words []string `yaml:"words"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	TotalRounds             int     `yaml:"total-rounds" env-default:"3"`
	SelectionWindowSeconds  int     `yaml:"selection-window-seconds" env-default:"15"`
	TurnDurationSeconds     int     `yaml:"turn-duration-seconds" env-default:"90"`
	CandidateWords          int     `yaml:"candidate-words" env-default:"3"`
	CloseGuessThreshold     float64 `yaml:"close-guess-threshold" env-default:"85"`
	PointsPerRemainingSec   int     `yaml:"points-per-remaining-second" env-default:"5"`
	GuessBasePoints         int     `yaml:"guess-base-points" env-default:"90"`
	SchedulerPollIntervalMS int     `yaml:"scheduler-poll-interval-ms" env-default:"250"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) SelectionWindow() time.Duration {
	return time.Duration(that.SelectionWindowSeconds) * time.Second
}

func (that *Game) TurnDuration() time.Duration {
	return time.Duration(that.TurnDurationSeconds) * time.Second
}

func (that *Game) SchedulerPollInterval() time.Duration {
	return time.Duration(that.SchedulerPollIntervalMS) * time.Millisecond
}
