package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud is used when no baud rate is configured.
const DefaultBaud = 115200

// OpenSerial opens a serial device in 8N1 mode.
func OpenSerial(path string, baud int, opts ...Option) (*Stream, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	opts = append([]Option{WithName(path)}, opts...)
	return NewStream(port, opts...), nil
}

// SerialPorts lists the serial devices present on the system.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
