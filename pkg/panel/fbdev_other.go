//go:build !linux

package panel

import (
	pkgerrors "github.com/pkg/errors"
)

// FBDev is only available on Linux.
type FBDev struct{}

func OpenFBDev(device string) (*FBDev, error) {
	return nil, pkgerrors.Errorf("framebuffer sink is not supported on this platform (device %s)", device)
}

func (*FBDev) Name() string { return SinkFBDev }

func (*FBDev) Apply(Frame) error {
	return pkgerrors.New("framebuffer sink is not supported on this platform")
}

func (*FBDev) Close() error { return nil }
