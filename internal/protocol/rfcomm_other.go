//go:build !linux

// internal/protocol/rfcomm_other.go
package protocol

import (
	"context"
	"errors"
	"io"
	"time"
)

type rfcommSocket interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
}

var errRFCOMMUnsupported = errors.New("rfcomm sockets are only supported on linux")

func dialRFCOMM(context.Context, string, int) (rfcommSocket, error) {
	return nil, errRFCOMMUnsupported
}
