//go:build linux

package adc

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MCP3008 reads one single-ended channel of an MCP3008 10-bit ADC over SPI.
type MCP3008 struct {
	port    spi.PortCloser
	conn    spi.Conn
	channel int
}

// NewMCP3008 opens the given SPI port and prepares channel ch for reads.
func NewMCP3008(portName string, ch int) (*MCP3008, error) {
	if ch < 0 || ch > 7 {
		return nil, fmt.Errorf("mcp3008: channel %d out of range 0-7", ch)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi port %s: %w", portName, err)
	}

	// The MCP3008 is good to 1.35MHz at 2.7V; 1MHz leaves margin.
	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	return &MCP3008{port: port, conn: conn, channel: ch}, nil
}

// Read performs one conversion and returns the 10-bit result.
func (m *MCP3008) Read() (int, error) {
	// Start bit, then single-ended mode + channel select, then clock out
	// the 10 result bits (datasheet section 6.1 framing).
	tx := []byte{0x01, byte(0x80 | m.channel<<4), 0x00}
	rx := make([]byte, 3)
	if err := m.conn.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("spi tx: %w", err)
	}
	return int(rx[1]&0x03)<<8 | int(rx[2]), nil
}

// Close releases the SPI port.
func (m *MCP3008) Close() error {
	return m.port.Close()
}
