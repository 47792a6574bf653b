// Package config loads service configuration with viper.
//
// Values come from, in increasing precedence: a YAML file found in the
// standard locations (or given explicitly), a .env file loaded with
// godotenv, and the process environment. Environment variables map onto
// nested keys by splitting on underscores, so ENGINE_PRIORITY sets
// engine.priority and ENGINE_INIT_ATTEMPTS sets engine.init_attempts.
//
//	var cfg AppConfig
//	err := config.LoadConfig("tashkeel", &cfg, config.WithConfigFile(path))
package config
