// Package config loads daemon configuration from flags, environment
// variables (BUTTON_*) and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/button-handler/internal/button"
	"github.com/sweeney/button-handler/internal/gpio"
	"github.com/sweeney/button-handler/internal/mqtt"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BUTTON"

const (
	keyConfig     = "config"
	keyBackend    = "backend"
	keyChip       = "chip"
	keyPin        = "pin"
	keyPoll       = "poll"
	keyDebounce   = "debounce"
	keyMedium     = "medium"
	keyLong       = "long"
	keyBroker     = "broker"
	keyClientID   = "client-id"
	keyBuffer     = "buffer"
	keyHeartbeat  = "heartbeat"
	keyHTTP       = "http"
	keyWSBroker   = "ws-broker"
	keyLogLevel   = "log-level"
	keyPrintState = "print-state"
)

// Config is the resolved daemon configuration.
type Config struct {
	Backend    string
	Chip       string
	Pin        int
	Poll       time.Duration
	Button     button.Config
	Broker     string
	ClientID   string
	BufferSize int
	Heartbeat  time.Duration
	HTTPAddr   string
	WSBroker   string // resolved URL, empty = disabled
	LogLevel   log.Level
	PrintState bool

	v *viper.Viper
}

func newFlagSet() *pflag.FlagSet {
	def := button.DefaultConfig()

	fs := pflag.NewFlagSet("button-handler", pflag.ContinueOnError)
	fs.String(keyConfig, "", "Config file (yaml, json, toml)")
	fs.String(keyBackend, gpio.BackendCdev, "GPIO backend: "+strings.Join(gpio.Backends, ", "))
	fs.String(keyChip, gpio.DefaultChip, "GPIO chip (gpiocdev backend only)")
	fs.Int(keyPin, gpio.DefaultPin, "BCM pin number of the button")
	fs.Duration(keyPoll, 10*time.Millisecond, "GPIO polling interval")
	fs.Duration(keyDebounce, def.Debounce, "Debounce delay")
	fs.Duration(keyMedium, def.Medium, "Medium press threshold")
	fs.Duration(keyLong, def.Long, "Long press threshold")
	fs.String(keyBroker, "tcp://localhost:1883", "MQTT broker address")
	fs.String(keyClientID, "button-handler", "MQTT client ID")
	fs.Int(keyBuffer, mqtt.DefaultBufferSize, "Messages buffered while the broker is unreachable")
	fs.Duration(keyHeartbeat, 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.String(keyHTTP, ":8080", "HTTP status address (empty to disable)")
	fs.String(keyWSBroker, "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	fs.String(keyLogLevel, "info", "Log level (debug, info, warn, error)")
	fs.Bool(keyPrintState, false, "Print current button state and exit")
	return fs
}

// Load parses args (without the program name) and merges them with the
// environment and the optional config file. Precedence: flag > env > file > default.
func Load(args []string) (Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := log.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}

	cfg := Config{
		Backend: v.GetString(keyBackend),
		Chip:    v.GetString(keyChip),
		Pin:     v.GetInt(keyPin),
		Poll:    v.GetDuration(keyPoll),
		Button: button.Config{
			Debounce: v.GetDuration(keyDebounce),
			Medium:   v.GetDuration(keyMedium),
			Long:     v.GetDuration(keyLong),
		},
		Broker:     v.GetString(keyBroker),
		ClientID:   v.GetString(keyClientID),
		BufferSize: v.GetInt(keyBuffer),
		Heartbeat:  v.GetDuration(keyHeartbeat),
		HTTPAddr:   v.GetString(keyHTTP),
		LogLevel:   level,
		PrintState: v.GetBool(keyPrintState),
		v:          v,
	}
	cfg.WSBroker = ResolveWSBroker(v.GetString(keyWSBroker), cfg.Broker)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WatchLogLevel re-reads the config file whenever it is written and passes
// the resulting log level to onChange. Other settings need a restart.
// It does nothing unless a config file was loaded.
func (c Config) WatchLogLevel(onChange func(log.Level)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		c.reloadLogLevel(e, onChange)
	})
	c.v.WatchConfig()
}

func (c Config) reloadLogLevel(e fsnotify.Event, onChange func(log.Level)) {
	if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	level, err := log.ParseLevel(c.v.GetString(keyLogLevel))
	if err != nil {
		log.Warnf("config reload %s: %v", e.Name, err)
		return
	}
	log.Infof("config reloaded from %s: log level %s", e.Name, level)
	onChange(level)
}

// Validate rejects settings the daemon cannot run with.
// Button thresholds are deliberately not checked here; see Warnings.
func (c Config) Validate() error {
	var errs []error
	if !gpio.ValidBackend(c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(gpio.Backends, ", ")))
	}
	if c.Pin < 0 {
		errs = append(errs, fmt.Errorf("pin must be >= 0, got %d", c.Pin))
	}
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be > 0, got %v", c.Poll))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer must be > 0, got %d", c.BufferSize))
	}
	if c.Broker == "" {
		errs = append(errs, errors.New("broker must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Warnings lists threshold orderings that will produce odd classifications.
func (c Config) Warnings() []string {
	var w []string
	b := c.Button
	if b.Debounce >= b.Medium {
		w = append(w, fmt.Sprintf("debounce %v is not below medium threshold %v", b.Debounce, b.Medium))
	}
	if b.Medium >= b.Long {
		w = append(w, fmt.Sprintf("medium threshold %v is not below long threshold %v", b.Medium, b.Long))
	}
	if c.Poll > b.Debounce {
		w = append(w, fmt.Sprintf("poll interval %v is longer than debounce %v", c.Poll, b.Debounce))
	}
	return w
}

// ResolveWSBroker converts the ws-broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or
// empty disables.
func ResolveWSBroker(ws, broker string) string {
	if ws == "off" || ws == "" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil || u.Hostname() == "" {
		log.Warnf("ws-broker: cannot derive from broker %q", broker)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
