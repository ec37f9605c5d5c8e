package led

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// Serial is a Link over a serial port. Writes that do not finish within the
// timeout return ErrTimeout; until the stuck write returns, later writes fail
// fast with ErrTimeout too.
type Serial struct {
	port    io.WriteCloser
	timeout time.Duration
	busy    atomic.Bool
}

// OpenSerial opens name at baud, 8N1.
func OpenSerial(name string, baud int, timeout time.Duration) (*Serial, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return NewSerial(p, timeout), nil
}

// NewSerial wraps an already open port. A zero timeout waits forever.
func NewSerial(port io.WriteCloser, timeout time.Duration) *Serial {
	return &Serial{port: port, timeout: timeout}
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

func (s *Serial) Write(frame []byte) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrTimeout
	}
	buf := append([]byte(nil), frame...)
	done := make(chan error, 1)
	go func() {
		_, err := s.port.Write(buf)
		s.busy.Store(false)
		done <- err
	}()

	if s.timeout <= 0 {
		return <-done
	}
	t := time.NewTimer(s.timeout)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-t.C:
		return ErrTimeout
	}
}

func (s *Serial) Close() error { return s.port.Close() }
