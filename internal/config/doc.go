// Package config provides centralized configuration management for the
// OptimEdu service and CLI.
//
// # Configuration Sources
//
// Configuration is assembled in layers, later layers winning:
//
//	1. Default values (Default)
//	2. A YAML file: $OPTIMEDU_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern OPTIMEDU_<SECTION>_<KEY>:
//
//	OPTIMEDU_SERVER_PORT=8080
//	OPTIMEDU_LOGGING_LEVEL=debug
//	OPTIMEDU_ANALYSIS_SEED=42
//	OPTIMEDU_ADVISOR_API_KEY=sk-...
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
