package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StaffCredential authorizes one staff member on the ops API. The
// password hash is bcrypt; plaintext passwords never appear in config.
type StaffCredential struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

type Config struct {
	DataDir string `yaml:"data_dir"`
	Port    string `yaml:"port"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	JWTSecret string            `yaml:"jwt_secret"`
	Staff     []StaffCredential `yaml:"staff"`

	MaxPinAttempts int `yaml:"max_pin_attempts"`
	PinLockMinutes int `yaml:"pin_lock_minutes"`

	WeightCapacityKg  float64 `yaml:"weight_capacity_kg"`
	HungerFullMinutes int     `yaml:"hunger_full_minutes"`
	ThirstFullMinutes int     `yaml:"thirst_full_minutes"`
}

// Default returns the built-in knobs: 3 PIN attempts, 10 minute lockout,
// 8 kg carry capacity, hunger empties in 90 minutes, thirst in 60.
func Default() Config {
	return Config{
		DataDir:           "data",
		Port:              "8080",
		MaxPinAttempts:    3,
		PinLockMinutes:    10,
		WeightCapacityKg:  8,
		HungerFullMinutes: 90,
		ThirstFullMinutes: 60,
	}
}

// Load reads the YAML config at path (optional, "" skips the file) and
// then applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.MaxPinAttempts <= 0 {
		cfg.MaxPinAttempts = 3
	}
	if cfg.PinLockMinutes <= 0 {
		cfg.PinLockMinutes = 10
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.Port = getEnv("PORT", c.Port)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	if v := os.Getenv("BANK_PIN_LOCK_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PinLockMinutes = n
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
