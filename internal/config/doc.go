// Package config loads stockpulse configuration.
//
// # Resolution Order
//
// Later sources win:
//
//  1. Built-in defaults
//  2. TOML file (~/.config/stockpulse/config.toml unless a path is given)
//  3. Environment, including a .env file in the working directory
//  4. Command-line overrides
//
// A missing config file is not an error; stockpulse works out of the box
// against the default public endpoint.
//
// # Default Values
//
//   - API URL: https://stockpulse-api.onrender.com
//   - Log file: ~/.local/share/stockpulse/stockpulse.log
//   - Log level: info
//   - Countdown tick: 1s
//   - Request timeout: none; the transport default applies unless set
//
// # TOML Format
//
//	api_url = "http://localhost:8000"
//	log_file = "~/.local/share/stockpulse/stockpulse.log"
//	log_level = "debug"
//	countdown_tick = "1s"
//	request_timeout = "90s"
//
// # Environment
//
//   - STOCKPULSE_API_URL: base URL of the scoring service
//   - STOCKPULSE_LOG_LEVEL: debug, info, warn or error
//
// # Validation
//
// The final Config is checked with go-playground/validator: the API URL must
// be absolute, the level known and the countdown tick positive. Tilde paths
// are expanded before validation.
package config
