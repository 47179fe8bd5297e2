package serialmouse

// Mode is the serial mouse variant presented to the host.
type Mode uint8

// Modes.
const (
	TwoButton Mode = iota
	ThreeButton
	WheelMouse
)

// Identification bytes sent after the host raises RTS.
const (
	IdentMouse       byte = 'M'
	IdentThreeButton byte = '3'
	IdentWheel       byte = 'Z'
)

func (m Mode) String() string {
	switch m {
	case TwoButton:
		return "2-button"
	case ThreeButton:
		return "3-button"
	case WheelMouse:
		return "wheel"
	}
	return "unknown"
}

// PacketLen returns the number of bytes in a motion packet.
func (m Mode) PacketLen() int {
	if m == TwoButton {
		return 3
	}
	return 4
}

// Ident returns the identification sequence for the mode.
func (m Mode) Ident() []byte {
	switch m {
	case ThreeButton:
		return []byte{IdentMouse, IdentThreeButton}
	case WheelMouse:
		return []byte{IdentMouse, IdentWheel}
	}
	return []byte{IdentMouse}
}

// Jumpers are the mode select inputs, sampled once at startup.
type Jumpers struct {
	TwoButton bool
	Wheel     bool
}

// ResolveMode picks the mode from the jumpers and the wheel capability
// reported by the device.
func ResolveMode(j Jumpers, wheel bool) Mode {
	switch {
	case j.TwoButton:
		return TwoButton
	case j.Wheel && wheel:
		return WheelMouse
	}
	return ThreeButton
}
