package vehicle

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"github.com/caarlos0/env"
	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/rcvehicle/pkg/actuator"
	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/indicator"
	"github.com/robotalks/rcvehicle/pkg/link"
	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/telemetry"
)

// Config is the immutable startup configuration of the vehicle.
type Config struct {
	Identity        int              `yaml:"identity"`
	LoopInterval    time.Duration    `yaml:"loop_interval"`
	FailsafeTimeout time.Duration    `yaml:"failsafe_timeout"`
	Radio           radio.Config     `yaml:"radio"`
	Actuator        actuator.Config  `yaml:"actuator"`
	Telemetry       telemetry.Config `yaml:"telemetry"`
	Indicator       indicator.Timing `yaml:"indicator"`

	// Listen is the TCP address accepting network radio connections.
	Listen string `yaml:"listen"`
	// WebSocketListen is the HTTP address serving network radio over
	// websocket on /radio.
	WebSocketListen string `yaml:"websocket_listen"`
	// MQTTURL enables the status uplink, e.g. mqtt://host:1883/rc/
	MQTTURL string `yaml:"mqtt_url"`
}

// Defaults
const (
	DefaultIdentity = 1
	DefaultListen   = ":4150"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Identity:        DefaultIdentity,
		LoopInterval:    fx.DefaultInterval,
		FailsafeTimeout: link.DefaultTimeout,
		Radio:           radio.DefaultConfig(),
		Actuator:        actuator.DefaultConfig(),
		Telemetry:       telemetry.DefaultConfig(),
		Indicator:       indicator.DefaultTiming,
		Listen:          DefaultListen,
	}
}

// envConfig lists the environment overrides.
type envConfig struct {
	Identity        int    `env:"RC_IDENTITY"`
	Channel         int    `env:"RC_RADIO_CHANNEL"`
	Listen          string `env:"RC_LISTEN"`
	WebSocketListen string `env:"RC_WS_LISTEN"`
	MQTTURL         string `env:"RC_MQTT_URL"`
}

// ApplyEnv overrides conf from RC_* environment variables.
func ApplyEnv(conf *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("environment: %v", err)
	}
	if e.Identity != 0 {
		conf.Identity = e.Identity
	}
	if e.Channel < 0 || e.Channel > int(radio.MaxChannel) {
		return &ConfigError{Field: "radio", Err: fmt.Errorf("RC_RADIO_CHANNEL %d out of range [0,%d]", e.Channel, radio.MaxChannel)}
	}
	if e.Channel != 0 {
		conf.Radio.Channel = uint8(e.Channel)
	}
	if e.Listen != "" {
		conf.Listen = e.Listen
	}
	if e.WebSocketListen != "" {
		conf.WebSocketListen = e.WebSocketListen
	}
	if e.MQTTURL != "" {
		conf.MQTTURL = e.MQTTURL
	}
	return nil
}

var (
	defaultConfig = DefaultConfig()
	flagSetters   = make(map[string]func(*Config))
)

func init() {
	if err := ApplyEnv(&defaultConfig); err != nil {
		glog.Warning(err)
	}
}

func bindFlag(name string, set func(*Config)) {
	flagSetters[name] = set
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Identity, "identity", defaultConfig.Identity, "Vehicle identity (1-5), selects radio address and blink count.")
	bindFlag("identity", func(c *Config) { c.Identity = defaultConfig.Identity })
	flag.DurationVar(&defaultConfig.LoopInterval, "loop-interval", defaultConfig.LoopInterval, "Control loop interval.")
	bindFlag("loop-interval", func(c *Config) { c.LoopInterval = defaultConfig.LoopInterval })
	flag.DurationVar(&defaultConfig.FailsafeTimeout, "failsafe-timeout", defaultConfig.FailsafeTimeout, "Silence before neutralizing commands.")
	bindFlag("failsafe-timeout", func(c *Config) { c.FailsafeTimeout = defaultConfig.FailsafeTimeout })
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "TCP address for network radio, empty to disable.")
	bindFlag("listen", func(c *Config) { c.Listen = defaultConfig.Listen })
	flag.StringVar(&defaultConfig.WebSocketListen, "ws-listen", defaultConfig.WebSocketListen, "HTTP address for network radio over websocket.")
	bindFlag("ws-listen", func(c *Config) { c.WebSocketListen = defaultConfig.WebSocketListen })
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for status uplink.")
	bindFlag("mqtt", func(c *Config) { c.MQTTURL = defaultConfig.MQTTURL })
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Radio.Addresses = append([]radio.Address(nil), defaultConfig.Radio.Addresses...)
	return &conf
}

// LoadFile reads the YAML file over the built-in defaults, then applies
// environment and explicitly set flags on top.
func LoadFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := DefaultConfig()
	conf.Radio.Addresses = nil
	if err = yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("parse %s: %v", path, err)
	}
	if conf.Radio.Addresses == nil {
		conf.Radio.Addresses = append([]radio.Address(nil), radio.DefaultAddresses...)
	}
	if err = ApplyEnv(&conf); err != nil {
		return nil, err
	}
	if flag.Parsed() {
		flag.Visit(func(f *flag.Flag) {
			if set := flagSetters[f.Name]; set != nil {
				set(&conf)
			}
		})
	}
	return &conf, nil
}

// MustLoad loads the config file if path is not empty, otherwise it
// returns NewConfig. Errors are fatal.
func MustLoad(path string) *Config {
	if path == "" {
		return NewConfig()
	}
	conf, err := LoadFile(path)
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// ConfigError indicates an invalid configuration field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

// Validate checks the configuration. An invalid identity is fatal at
// startup.
func (c *Config) Validate() error {
	if !radio.Identity(c.Identity).Valid() {
		return &ConfigError{Field: "identity", Err: radio.ErrInvalidIdentity}
	}
	if err := c.Radio.Validate(); err != nil {
		return &ConfigError{Field: "radio", Err: err}
	}
	if _, err := radio.Identity(c.Identity).Address(c.Radio.Addresses); err != nil {
		return &ConfigError{Field: "identity", Err: err}
	}
	if c.LoopInterval <= 0 {
		return &ConfigError{Field: "loop_interval", Err: fmt.Errorf("must be positive")}
	}
	if c.FailsafeTimeout <= 0 {
		return &ConfigError{Field: "failsafe_timeout", Err: fmt.Errorf("must be positive")}
	}
	if c.Telemetry.Period <= 0 {
		return &ConfigError{Field: "telemetry.period", Err: fmt.Errorf("must be positive")}
	}
	a := c.Actuator
	if a.MaxPWM <= 0 || a.LimitedMaxPWM <= 0 || a.LimitedMaxPWM > a.MaxPWM {
		return &ConfigError{Field: "actuator", Err: fmt.Errorf("require 0 < limited_max_pwm <= max_pwm")}
	}
	if a.StepInterval <= 0 || a.LimitedStepInterval <= 0 {
		return &ConfigError{Field: "actuator", Err: fmt.Errorf("step intervals must be positive")}
	}
	if a.SteeringMin >= a.SteeringMax {
		return &ConfigError{Field: "actuator", Err: fmt.Errorf("steering_min must be below steering_max")}
	}
	return nil
}

// Profile is the vehicle identity resolved into its effects.
type Profile struct {
	Identity radio.Identity
	Address  radio.Address
	Pattern  indicator.Pattern
}

// Profile resolves the identity once, into both the radio address and
// the blink pattern.
func (c *Config) Profile() (Profile, error) {
	id := radio.Identity(c.Identity)
	addr, err := id.Address(c.Radio.Addresses)
	if err != nil {
		return Profile{}, &ConfigError{Field: "identity", Err: err}
	}
	return Profile{
		Identity: id,
		Address:  addr,
		Pattern:  indicator.IdentityPattern(c.Identity, c.Indicator),
	}, nil
}
