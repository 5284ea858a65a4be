//go:build !linux || !cgo

package gpu

import (
	"context"
	"errors"
)

func openNVML(context.Context, Options) (Device, error) {
	return nil, errors.New("nvml binding not supported on this platform")
}
