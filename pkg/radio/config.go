// Package radio provides the vehicle side of the wireless link:
// the immutable radio configuration, the pre-shared address table and
// the reliability policy applied on top of a raw transceiver.
package radio

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// PowerLevel is the transmit power setting.
type PowerLevel int

// Power levels.
const (
	PowerMin PowerLevel = iota
	PowerLow
	PowerHigh
	PowerMax
)

var powerNames = []string{"min", "low", "high", "max"}

// String implements fmt.Stringer.
func (p PowerLevel) String() string {
	if p >= 0 && int(p) < len(powerNames) {
		return powerNames[p]
	}
	return fmt.Sprintf("power(%d)", int(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PowerLevel) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for n, name := range powerNames {
		if name == s {
			*p = PowerLevel(n)
			return nil
		}
	}
	return fmt.Errorf("unknown power level %q", s)
}

// DataRate is the on-air data rate.
type DataRate int

// Data rates.
const (
	Rate250Kbps DataRate = iota
	Rate1Mbps
	Rate2Mbps
)

var rateNames = []string{"250kbps", "1mbps", "2mbps"}

// String implements fmt.Stringer.
func (r DataRate) String() string {
	if r >= 0 && int(r) < len(rateNames) {
		return rateNames[r]
	}
	return fmt.Sprintf("rate(%d)", int(r))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *DataRate) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for n, name := range rateNames {
		if name == s {
			*r = DataRate(n)
			return nil
		}
	}
	return fmt.Errorf("unknown data rate %q", s)
}

// Address is a pre-shared pipe address.
type Address [5]byte

// String implements fmt.Stringer.
func (a Address) String() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// ParseAddress parses the hex form produced by String.
func ParseAddress(s string) (a Address, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, err
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("address %q must be %d bytes", s, len(a))
	}
	copy(a[:], b)
	return a, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAddress(string(text))
	return
}

// MaxIdentities is the size of the address table.
const MaxIdentities = 5

// DefaultAddresses is the factory address table, indexed by identity-1.
var DefaultAddresses = []Address{
	{0xE8, 0xE8, 0xF0, 0xF0, 0xE1},
	{0xE8, 0xE8, 0xF0, 0xF0, 0xE2},
	{0xE8, 0xE8, 0xF0, 0xF0, 0xE3},
	{0xE8, 0xE8, 0xF0, 0xF0, 0xE4},
	{0xE8, 0xE8, 0xF0, 0xF0, 0xE5},
}

// Identity selects the vehicle among the pre-shared addresses.
type Identity int

// Valid checks the identity is within 1..MaxIdentities.
func (id Identity) Valid() bool {
	return id >= 1 && id <= MaxIdentities
}

// Address resolves the identity in table.
func (id Identity) Address(table []Address) (Address, error) {
	if !id.Valid() || int(id) > len(table) {
		return Address{}, ErrInvalidIdentity
	}
	return table[id-1], nil
}

// Config is the radio configuration supplied at startup.
type Config struct {
	Channel         uint8         `yaml:"channel"`
	Power           PowerLevel    `yaml:"power"`
	Rate            DataRate      `yaml:"rate"`
	DynamicPayloads bool          `yaml:"dynamic_payloads"`
	AutoAck         bool          `yaml:"auto_ack"`
	AckPayloads     bool          `yaml:"ack_payloads"`
	RetryCount      int           `yaml:"retry_count"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	Addresses       []Address     `yaml:"addresses"`
}

// Defaults
const (
	DefaultChannel    uint8 = 108
	DefaultRetryCount       = 5
	DefaultRetryDelay       = 1500 * time.Microsecond
	// MaxChannel is the highest RF channel.
	MaxChannel uint8 = 125
	// MaxRetryCount is the hardware limit of auto retransmits.
	MaxRetryCount = 15
	// MaxRetryDelay is the hardware limit of the retransmit delay.
	MaxRetryDelay = 4000 * time.Microsecond
)

// DefaultConfig returns the factory radio configuration: fixed channel,
// high power, the slowest data rate for range, dynamic payloads and
// acknowledgements carrying payloads.
func DefaultConfig() Config {
	return Config{
		Channel:         DefaultChannel,
		Power:           PowerHigh,
		Rate:            Rate250Kbps,
		DynamicPayloads: true,
		AutoAck:         true,
		AckPayloads:     true,
		RetryCount:      DefaultRetryCount,
		RetryDelay:      DefaultRetryDelay,
		Addresses:       append([]Address(nil), DefaultAddresses...),
	}
}

// Validate checks the configuration against hardware limits.
func (c Config) Validate() error {
	if c.Channel > MaxChannel {
		return fmt.Errorf("radio channel %d out of range [0,%d]", c.Channel, MaxChannel)
	}
	if c.RetryCount < 0 || c.RetryCount > MaxRetryCount {
		return fmt.Errorf("radio retry count %d out of range [0,%d]", c.RetryCount, MaxRetryCount)
	}
	if c.RetryDelay < 0 || c.RetryDelay > MaxRetryDelay {
		return fmt.Errorf("radio retry delay %v out of range [0,%v]", c.RetryDelay, MaxRetryDelay)
	}
	if !c.DynamicPayloads || !c.AutoAck || !c.AckPayloads {
		return fmt.Errorf("radio requires dynamic payloads with auto ack payloads")
	}
	if len(c.Addresses) == 0 || len(c.Addresses) > MaxIdentities {
		return fmt.Errorf("radio address table must have 1 to %d entries", MaxIdentities)
	}
	seen := make(map[Address]int)
	for n, addr := range c.Addresses {
		if prev, ok := seen[addr]; ok {
			return fmt.Errorf("radio address %s shared by identities %d and %d", addr, prev+1, n+1)
		}
		seen[addr] = n
	}
	return nil
}
