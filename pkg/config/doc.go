// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env field tags, with optional .env
// file support for local development.
//
// Each configuration type is loaded once and cached for the process
// lifetime, so components can call Load independently without re-parsing
// the environment:
//
//	type MongoConfig struct {
//		URL string `env:"MONGODB_URL,required"`
//	}
//
//	var cfg MongoConfig
//	config.MustLoad(&cfg)
package config
