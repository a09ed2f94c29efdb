package lib

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/units"
)

/* This file implements logic for 'user controlled' configurations of the client, the signing service and telemetry */

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath  = "config.json"  // the file path for the client configuration
	AccountFilePath = "account.json" // the file path for the public account description
)

const (
	DefaultAPIServer   = "https://api1.aleph.im" // the public aleph api node
	DefaultChannel     = "TEST"                  // the default aleph channel
	DefaultInlineLimit = 150000                  // json content up to this many characters is stored inline
)

// Config is the structure of the user configuration options for the aleph client
type Config struct {
	MainConfig    // main options spanning over all modules
	APIConfig     // aleph api client options
	ServerConfig  // local signing service options
	MetricsConfig // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:    DefaultMainConfig(),
		APIConfig:     DefaultAPIConfig(),
		ServerConfig:  DefaultServerConfig(),
		MetricsConfig: DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel    string    `json:"logLevel"`    // any level includes the levels above it: debug < info < warning < error
	Chain       ChainType `json:"chain"`       // the chain of the default account
	DataDirPath string    `json:"dataDirPath"` // the data directory, not persisted when empty
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel: "info",     // everything but debug is the default
		Chain:    ChainNULS2, // the default account type
	}
}

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 {
	switch {
	case strings.Contains(strings.ToLower(m.LogLevel), "deb"):
		return DebugLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "inf"):
		return InfoLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "war"):
		return WarnLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// API CONFIG BELOW

type APIConfig struct {
	APIServer     string   `json:"apiServer"`     // the aleph api node url
	TimeoutS      int      `json:"timeoutS"`      // the http request timeout in seconds
	MaxRetries    uint64   `json:"maxRetries"`    // how many times a failed network call is retried
	InlineLimit   int      `json:"inlineLimit"`   // the maximum serialized content length stored inline
	StorageEngine ItemType `json:"storageEngine"` // where non inline content is pushed: 'storage' or 'ipfs'
	Channel       string   `json:"channel"`       // the channel messages are submitted to
}

// DefaultAPIConfig() points the client to the public aleph api
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		APIServer:     DefaultAPIServer,
		TimeoutS:      30,
		MaxRetries:    3,
		InlineLimit:   DefaultInlineLimit,
		StorageEngine: ItemStorage,
		Channel:       DefaultChannel,
	}
}

// SERVER CONFIG BELOW

type ServerConfig struct {
	ListenAddress  string   `json:"listenAddress"`  // the address the local signing service binds to
	TimeoutMS      int      `json:"timeoutMS"`      // the request handling timeout in milliseconds
	MaxBodyBytes   int64    `json:"maxBodyBytes"`   // the maximum request body size
	AllowedOrigins []string `json:"allowedOrigins"` // browser origins allowed to call the service, none by default
}

// DefaultServerConfig() binds the local signing service to localhost only
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress: "127.0.0.1:50010",
		TimeoutMS:     5000,
		MaxBodyBytes:  int64(units.MB),
	}
}

// METRICS CONFIG BELOW

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled"`           // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           false,            // a client doesn't expose metrics unless asked
		PrometheusAddress: "127.0.0.1:9091", // the default prometheus address
	}
}

// DefaultDataDirPath() is $USERHOME/.aleph
func DefaultDataDirPath() string {
	// get the user home
	home, err := os.UserHomeDir()
	// if unable to get the user home
	if err != nil {
		// fatal error
		panic(err)
	}
	// exit with full default data directory path
	return filepath.Join(home, ".aleph")
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	// convert the config to indented 'pretty' json bytes
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	// if an error occurred during the conversion
	if err != nil {
		// exit with error
		return err
	}
	// write the config.json file to the data directory
	return os.WriteFile(filepath, jsonBytes, 0600)
}

// NewConfigFromFile() populates a Config object from a JSON file
func NewConfigFromFile(filepath string) (Config, error) {
	// read the file into bytes using
	fileBytes, err := os.ReadFile(filepath)
	// if an error occurred
	if err != nil {
		// exit with error
		return Config{}, err
	}
	// define the default config to fill in any blanks in the file
	c := DefaultConfig()
	// populate the default config with the file bytes
	if err = json.Unmarshal(fileBytes, &c); err != nil {
		// exit with error
		return Config{}, err
	}
	// exit
	return c, nil
}
