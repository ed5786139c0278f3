// Package rc holds the receiver-side data model shared by every pulse and
// serial decoder: logical channel identities, transmitter channel orders, the
// interrupt-to-loop sample buffer and the channel normalizer.
package rc

// Channel is a logical RC channel identity.
type Channel uint8

const (
	Throttle Channel = iota
	Aileron
	Elevator
	Rudder
	Gear
	Aux1
	Aux2
	Aux3

	// NumChannels is the number of logical channels the core consumes.
	NumChannels = 8
)

// MaxSlots is the largest number of transmission slots any decoder reports.
// Slots past NumChannels are decoded but have no logical identity.
const MaxSlots = 18

var channelNames = [NumChannels]string{
	"throttle", "aileron", "elevator", "rudder", "gear", "aux1", "aux2", "aux3",
}

func (c Channel) String() string {
	if int(c) < NumChannels {
		return channelNames[c]
	}
	return "invalid"
}

// Valid reports whether c names a logical channel.
func (c Channel) Valid() bool { return int(c) < NumChannels }

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, ErrUnknownChannel
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownChannel
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(b []byte) error {
	ch, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}
