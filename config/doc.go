// Package config loads nexus settings with viper.
//
// Values come from built-in defaults, an optional config.yaml in the working
// directory or ./config, and NEXUS_-prefixed environment variables such as
// NEXUS_LLM_BASE_URL or NEXUS_LOOP_MAX_RETRIES. The result is validated before
// it is handed to the rest of the service.
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.GetTimeout()
package config
