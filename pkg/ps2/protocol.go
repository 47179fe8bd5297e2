package ps2

import "time"

// Command is a host-to-device command byte.
type Command byte

// Mouse commands.
const (
	CmdDisableScaling   Command = 0xe6
	CmdEnableScaling    Command = 0xe7
	CmdSetResolution    Command = 0xe8
	CmdStatusRequest    Command = 0xe9
	CmdSetStreamMode    Command = 0xea
	CmdReadData         Command = 0xeb
	CmdResetWrapMode    Command = 0xec
	CmdSetWrapMode      Command = 0xee
	CmdSetRemoteMode    Command = 0xf0
	CmdGetDeviceID      Command = 0xf2
	CmdSetSampleRate    Command = 0xf3
	CmdEnableReporting  Command = 0xf4
	CmdDisableReporting Command = 0xf5
	CmdSetDefaults      Command = 0xf6
	CmdResend           Command = 0xfe
	CmdReset            Command = 0xff
)

// Device responses.
const (
	IDMouse        byte = 0x00
	IDWheelMouse   byte = 0x03
	SelfTestPassed byte = 0xaa
	Ack            byte = 0xfa
	Error          byte = 0xfc
	Resend         byte = 0xfe
)

// Bus timing.
const (
	// InhibitTime is how long the host holds the clock low before a request-to-send.
	InhibitTime = 100 * time.Microsecond
)

// Default spin budgets used while polling the clock line.
const (
	DefaultBitSpin      = 50000
	DefaultResponseSpin = 5000000
	DefaultMaxResends   = 3
)

// wheel detection sample-rate sequence.
var wheelKnock = [...]byte{200, 100, 80}
