package rc

// Order maps a transmitter's transmission slot to a logical channel:
// Order[slot] is the channel carried in that slot.
type Order [NumChannels]Channel

var (
	// OrderJR is the JR/Spektrum transmitter order.
	OrderJR = Order{Throttle, Aileron, Elevator, Rudder, Gear, Aux1, Aux2, Aux3}
	// OrderFutaba is the Futaba/Hitec transmitter order.
	OrderFutaba = Order{Aileron, Elevator, Throttle, Rudder, Gear, Aux1, Aux2, Aux3}
	// OrderSatellite is the order of Spektrum satellite channel ids.
	OrderSatellite = Order{Throttle, Aileron, Elevator, Rudder, Gear, Aux1, Aux2, Aux3}
)

var presets = map[string]Order{
	"jr":        OrderJR,
	"futaba":    OrderFutaba,
	"satellite": OrderSatellite,
}

// LookupOrder returns a preset order by name.
func LookupOrder(name string) (Order, error) {
	o, ok := presets[name]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	return o, nil
}

// Validate reports whether every logical channel appears exactly once.
func (o Order) Validate() error {
	var seen [NumChannels]bool
	for _, ch := range o {
		if !ch.Valid() || seen[ch] {
			return ErrBadOrder
		}
		seen[ch] = true
	}
	return nil
}

// Channel returns the logical channel carried by slot and whether the slot
// has one.
func (o Order) Channel(slot int) (Channel, bool) {
	if slot < 0 || slot >= NumChannels {
		return 0, false
	}
	return o[slot], true
}
