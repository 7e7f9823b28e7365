// Package config loads service configuration with Viper.
//
// Values come from a YAML file (searched in ./cmd/<service>/config.yml,
// ./config/config.yml and ./config.yml), then from environment variables,
// optionally seeded from a .env file. Environment keys are matched against
// nested YAML keys, so TRANSCRIBER_QUEUE_CAPACITY sets
// transcriber.queue_capacity.
//
//	var cfg AppConfig
//	err := config.LoadConfig("whisperbot", &cfg)
package config
