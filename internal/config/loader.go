package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mfgpilot/traceability/internal/db"
	"github.com/mfgpilot/traceability/internal/recall"
)

func LoadDBConfig(configPath string) (db.Config, error) {
	// Start with default
	cfg := db.DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()     // allow environment overrides
	v.SetEnvPrefix("DB") // map env vars like DB_HOST, DB_PORT

	// Optional: Map nested keys to flat env vars
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	// Override defaults if values exist
	if v.IsSet("database.host") {
		cfg.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.SSLMode = v.GetString("database.sslmode")
	}

	return cfg, nil
}

// LoadRecallConfig reads recall cost and reportability parameters from the
// same config.yaml, with RECALL_ env overrides. Rates are decimal strings so
// monetary values never pass through a float.
func LoadRecallConfig(configPath string) (recall.Config, error) {
	cfg := recall.DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("RECALL")

	v.BindEnv("recall.retrieval_cost_rate")
	v.BindEnv("recall.disposal_cost_rate")
	v.BindEnv("recall.margin_factor")
	v.BindEnv("recall.reportable_value_threshold")
	v.BindEnv("recall.response_window_days")
	v.BindEnv("recall.confidence_interval")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using recall defaults and env vars")
	}

	var err error
	if v.IsSet("recall.retrieval_cost_rate") {
		if cfg.RetrievalCostRate, err = decimal.NewFromString(v.GetString("recall.retrieval_cost_rate")); err != nil {
			return cfg, fmt.Errorf("invalid recall.retrieval_cost_rate: %w", err)
		}
	}
	if v.IsSet("recall.disposal_cost_rate") {
		if cfg.DisposalCostRate, err = decimal.NewFromString(v.GetString("recall.disposal_cost_rate")); err != nil {
			return cfg, fmt.Errorf("invalid recall.disposal_cost_rate: %w", err)
		}
	}
	if v.IsSet("recall.margin_factor") {
		if cfg.MarginFactor, err = decimal.NewFromString(v.GetString("recall.margin_factor")); err != nil {
			return cfg, fmt.Errorf("invalid recall.margin_factor: %w", err)
		}
	}
	if v.IsSet("recall.reportable_value_threshold") {
		if cfg.ReportableValueThreshold, err = decimal.NewFromString(v.GetString("recall.reportable_value_threshold")); err != nil {
			return cfg, fmt.Errorf("invalid recall.reportable_value_threshold: %w", err)
		}
	}
	if v.IsSet("recall.always_reportable_product_types") {
		cfg.AlwaysReportableProductTypes = v.GetStringSlice("recall.always_reportable_product_types")
	}
	if v.IsSet("recall.response_window_days") {
		cfg.ResponseWindowDays = v.GetInt("recall.response_window_days")
	}
	if v.IsSet("recall.confidence_interval") {
		cfg.ConfidenceInterval = v.GetString("recall.confidence_interval")
	}

	return cfg, nil
}
