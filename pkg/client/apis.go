package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/kcal/pkg/config"
	"github.com/charlie0129/kcal/pkg/kcal"
	"github.com/charlie0129/kcal/pkg/lut"
)

// LUT is the working table as reported by the daemon.
type LUT struct {
	Entries  []uint32 `json:"entries"`
	Linear   bool     `json:"linear"`
	Modified []int    `json:"modified"`
}

// EditLUT sets one channel of one LUT entry, computing the key.
func (c *Client) EditLUT(value int, ch lut.Channel, index int) (int, error) {
	key := kcal.LUTKey(int64(value), int64(ch), int64(index))
	return c.WriteLine("/lut-edit", fmt.Sprintf("%d %d %d %d", value, ch, index, key))
}

// LUTStatus reports whether an edit was accepted since the last call.
func (c *Client) LUTStatus() (bool, error) {
	ret, err := c.Get("/lut-edit")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get lut status")
	}
	return parseStatusResponse(ret)
}

// ResetLUT restores the identity table.
func (c *Client) ResetLUT() (int, error) {
	return c.WriteLine("/lut-reset", "1")
}

// SetTriplet sets the panel gains, computing the checksum.
func (c *Client) SetTriplet(r, g, b int) (int, error) {
	sum := kcal.EmbedTripletChecksum(int64(r), int64(g), int64(b))
	return c.WriteLine("/triplet", fmt.Sprintf("%d %d %d %d", r, g, b, sum))
}

// GetTriplet returns the panel gains.
func (c *Client) GetTriplet() (r, g, b int, err error) {
	ret, err := c.Get("/triplet")
	if err != nil {
		return 0, 0, 0, pkgerrors.Wrapf(err, "failed to get triplet")
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(ret), "%d %d %d", &r, &g, &b); err != nil {
		return 0, 0, 0, pkgerrors.Wrapf(err, "failed to parse triplet %q", ret)
	}
	return r, g, b, nil
}

// Apply pushes the current calibration to the display.
func (c *Client) Apply() (int, error) {
	return c.WriteLine("/apply", strconv.Itoa(kcal.CommandApply))
}

// ApplyStatus reports whether the last apply request succeeded.
func (c *Client) ApplyStatus() (bool, error) {
	ret, err := c.Get("/apply")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get apply status")
	}
	return parseStatusResponse(ret)
}

// Resume re-applies the calibration without touching the apply status.
func (c *Client) Resume() error {
	_, err := c.Post("/resume", "")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to resume")
	}
	return nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return strings.TrimSpace(ret), nil
}

func (c *Client) GetLUT() (*LUT, error) {
	ret, err := c.Get("/lut")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get lut")
	}

	var t LUT
	if err := json.Unmarshal([]byte(ret), &t); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal lut")
	}
	return &t, nil
}

func (c *Client) GetLUTEntry(index int) (uint32, error) {
	ret, err := c.Get("/lut/" + strconv.Itoa(index))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get lut entry %d", index)
	}

	var e uint32
	if err := json.Unmarshal([]byte(ret), &e); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal lut entry")
	}
	return e, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

// ReapplyStatus describes the periodic re-apply schedule.
type ReapplyStatus struct {
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"nextRun,omitempty"`
}

func parseReapplyStatus(ret string) (*ReapplyStatus, error) {
	var st ReapplyStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal re-apply status")
	}
	return &st, nil
}

func (c *Client) GetReapply() (*ReapplyStatus, error) {
	ret, err := c.Get("/reapply")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get re-apply schedule")
	}
	return parseReapplyStatus(ret)
}

// SetReapply replaces the re-apply schedule. An empty expression disables it.
func (c *Client) SetReapply(cronExpr string) (*ReapplyStatus, error) {
	ret, err := c.Put("/reapply", cronExpr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to set re-apply schedule")
	}
	return parseReapplyStatus(ret)
}

// SkipReapply skips the next scheduled re-apply.
func (c *Client) SkipReapply() (*ReapplyStatus, error) {
	ret, err := c.Post("/reapply/skip", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to skip re-apply")
	}
	return parseReapplyStatus(ret)
}

// WriteLine sends a raw protocol line to path and returns the number of
// bytes the daemon consumed.
func (c *Client) WriteLine(path, line string) (int, error) {
	ret, err := c.Put(path, line)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(ret))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "unexpected response %q", ret)
	}
	return n, nil
}

func parseStatusResponse(resp string) (bool, error) {
	switch strings.TrimSpace(resp) {
	case kcal.StatusTextOK:
		return true, nil
	case kcal.StatusTextNG:
		return false, nil
	default:
		return false, pkgerrors.Errorf("unknown status response: %q", resp)
	}
}
