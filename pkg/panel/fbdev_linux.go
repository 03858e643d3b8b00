//go:build linux

package panel

import (
	"os"
	"runtime"
	"unsafe"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/charlie0129/kcal/pkg/lut"
)

// <linux/fb.h> ioctls
//
// 0x46 is 'F'
const (
	fbioGetCmap = 0x4604
	fbioPutCmap = 0x4605
)

// <linux/fb.h> struct fb_cmap
type fbCmap struct {
	Start  uint32
	Len    uint32
	Red    *uint16
	Green  *uint16
	Blue   *uint16
	Transp *uint16
}

// FBDev programs the color map of a Linux framebuffer device.
type FBDev struct {
	f *os.File

	// orig is the color map found on open. Close puts it back.
	orig     Ramp
	haveOrig bool
}

// OpenFBDev opens a framebuffer device such as /dev/fb0.
func OpenFBDev(device string) (*FBDev, error) {
	if device == "" {
		device = DefaultFBDevice
	}

	f, err := os.OpenFile(device, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open framebuffer %s", device)
	}

	d := &FBDev{f: f}
	orig, err := d.ReadRamp()
	if err != nil {
		logrus.WithError(err).WithField("device", device).Warn("failed to read original color map, it will not be restored on close")
	} else {
		d.orig, d.haveOrig = orig, true
	}

	logrus.WithField("device", device).Info("framebuffer opened")
	return d, nil
}

func (d *FBDev) Name() string { return SinkFBDev }

func (d *FBDev) Apply(f Frame) error {
	ramp := Compose(f)
	if err := d.putCmap(&ramp); err != nil {
		return pkgerrors.Wrapf(err, "FBIOPUTCMAP on %s failed", d.f.Name())
	}
	return nil
}

// ReadRamp returns the color map currently programmed on the device.
func (d *FBDev) ReadRamp() (Ramp, error) {
	var ramp Ramp
	cmap := newCmap(&ramp)
	if err := d.ioctl(fbioGetCmap, &cmap); err != nil {
		return ramp, pkgerrors.Wrapf(err, "FBIOGETCMAP on %s failed", d.f.Name())
	}
	runtime.KeepAlive(&ramp)
	return ramp, nil
}

func (d *FBDev) putCmap(ramp *Ramp) error {
	cmap := newCmap(ramp)
	err := d.ioctl(fbioPutCmap, &cmap)
	runtime.KeepAlive(ramp)
	return err
}

func (d *FBDev) ioctl(req uintptr, cmap *fbCmap) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(unsafe.Pointer(cmap)))
	if errno != 0 {
		return errno
	}
	return nil
}

func newCmap(ramp *Ramp) fbCmap {
	return fbCmap{
		Start: 0,
		Len:   lut.Size,
		Red:   &ramp.Red[0],
		Green: &ramp.Green[0],
		Blue:  &ramp.Blue[0],
	}
}

// Close restores the color map read on open and closes the device.
func (d *FBDev) Close() error {
	var restoreErr error
	if d.haveOrig {
		if err := d.putCmap(&d.orig); err != nil {
			restoreErr = pkgerrors.Wrapf(err, "failed to restore color map on %s", d.f.Name())
		} else {
			logrus.WithField("device", d.f.Name()).Info("original color map restored")
		}
	}

	if err := d.f.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %s", d.f.Name())
	}
	return restoreErr
}
