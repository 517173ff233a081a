package vehicle

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rcvehicle/pkg/radio"
)

const testYaml = `
identity: 4
loop_interval: 2ms
failsafe_timeout: 800ms
actuator:
  max_pwm: 200
  limited_max_pwm: 120
telemetry:
  low_battery: 3.3
mqtt_url: mqtt://broker:1883/rc/
`

func writeTemp(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "rcvehicle")
	require.NoError(t, err)
	path := filepath.Join(dir, "vehicle.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTemp(t, testYaml)
	defer os.RemoveAll(filepath.Dir(path))

	conf, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 4, conf.Identity)
	require.Equal(t, 2*time.Millisecond, conf.LoopInterval)
	require.Equal(t, 800*time.Millisecond, conf.FailsafeTimeout)
	require.Equal(t, int16(200), conf.Actuator.MaxPWM)
	require.Equal(t, int16(120), conf.Actuator.LimitedMaxPWM)
	require.Equal(t, 7*time.Millisecond, conf.Actuator.StepInterval)
	require.Equal(t, 3.3, conf.Telemetry.LowBattery)
	require.Equal(t, 155.15, conf.Telemetry.BatteryDivider)
	require.Equal(t, "mqtt://broker:1883/rc/", conf.MQTTURL)
	require.Equal(t, radio.DefaultAddresses, conf.Radio.Addresses)
	require.NoError(t, conf.Validate())

	_, err = LoadFile(filepath.Join(filepath.Dir(path), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	os.Setenv("RC_IDENTITY", "5")
	os.Setenv("RC_MQTT_URL", "mqtt://env:1883/")
	defer os.Unsetenv("RC_IDENTITY")
	defer os.Unsetenv("RC_MQTT_URL")

	conf := DefaultConfig()
	require.NoError(t, ApplyEnv(&conf))
	require.Equal(t, 5, conf.Identity)
	require.Equal(t, "mqtt://env:1883/", conf.MQTTURL)
	require.Equal(t, DefaultListen, conf.Listen)

	path := writeTemp(t, testYaml)
	defer os.RemoveAll(filepath.Dir(path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 5, loaded.Identity)
	require.Equal(t, "mqtt://env:1883/", loaded.MQTTURL)
}

func TestApplyEnvChannelRange(t *testing.T) {
	defer os.Unsetenv("RC_RADIO_CHANNEL")

	os.Setenv("RC_RADIO_CHANNEL", "100")
	conf := DefaultConfig()
	require.NoError(t, ApplyEnv(&conf))
	require.Equal(t, uint8(100), conf.Radio.Channel)

	for _, v := range []string{"300", "126", "-1"} {
		os.Setenv("RC_RADIO_CHANNEL", v)
		conf := DefaultConfig()
		err := ApplyEnv(&conf)
		require.Error(t, err, v)
		cerr, ok := err.(*ConfigError)
		require.True(t, ok, v)
		require.Equal(t, "radio", cerr.Field)
		require.Equal(t, radio.DefaultChannel, conf.Radio.Channel)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"identity", func(c *Config) { c.Identity = 0 }, "identity"},
		{"identity beyond table", func(c *Config) { c.Identity = 3; c.Radio.Addresses = c.Radio.Addresses[:2] }, "identity"},
		{"radio", func(c *Config) { c.Radio.Channel = 126 }, "radio"},
		{"loop", func(c *Config) { c.LoopInterval = 0 }, "loop_interval"},
		{"timeout", func(c *Config) { c.FailsafeTimeout = -1 }, "failsafe_timeout"},
		{"period", func(c *Config) { c.Telemetry.Period = 0 }, "telemetry.period"},
		{"pwm", func(c *Config) { c.Actuator.LimitedMaxPWM = 300 }, "actuator"},
		{"steering", func(c *Config) { c.Actuator.SteeringMin = 120 }, "actuator"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := DefaultConfig()
			tc.modify(&conf)
			err := conf.Validate()
			require.Error(t, err)
			require.Equal(t, tc.field, err.(*ConfigError).Field)
		})
	}
	conf := DefaultConfig()
	require.NoError(t, conf.Validate())
}
