//go:build linux

// internal/protocol/rfcomm_linux.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// rfcommSocket is the connected socket as seen by RFCOMMConnection
type rfcommSocket interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
}

const connectPollInterval = 100 * time.Millisecond

// bdaddr converts a colon MAC to the little-endian byte order used by sockaddr_rc
func bdaddr(mac string) ([6]byte, error) {
	var addr [6]byte
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return addr, fmt.Errorf("invalid MAC address %s: %w", mac, err)
	}
	if len(hw) != 6 {
		return addr, fmt.Errorf("MAC address must be 6 bytes, got %d", len(hw))
	}
	for i := 0; i < 6; i++ {
		addr[i] = hw[5-i]
	}
	return addr, nil
}

// dialRFCOMM connects a non-blocking RFCOMM socket, honouring ctx while the
// connect is in progress. The returned file is registered with the runtime
// poller so write deadlines apply.
func dialRFCOMM(ctx context.Context, mac string, channel int) (rfcommSocket, error) {
	addr, err := bdaddr(mac)
	if err != nil {
		return nil, err
	}
	if channel < 1 || channel > 30 {
		return nil, fmt.Errorf("invalid rfcomm channel %d", channel)
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: uint8(channel)}
	err = unix.Connect(fd, sa)
	if errors.Is(err, unix.EINPROGRESS) {
		err = waitConnected(ctx, fd)
	}
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	return os.NewFile(uintptr(fd), "rfcomm:"+mac), nil
}

func waitConnected(ctx context.Context, fd int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(fds, int(connectPollInterval/time.Millisecond))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		if n == 0 {
			continue
		}

		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return fmt.Errorf("getsockopt failed: %w", err)
		}
		if soErr != 0 {
			return fmt.Errorf("failed to connect: %w", unix.Errno(soErr))
		}
		return nil
	}
}
