package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/config"
	"github.com/charlie0129/kcal/pkg/kcal"
	"github.com/charlie0129/kcal/pkg/lut"
)

// maxLineLength bounds request bodies. Every line in the protocol is a
// handful of integers. Longer bodies get 413 instead of being truncated.
const maxLineLength = 4096

// LUTResponse is the body of GET /lut.
type LUTResponse struct {
	Entries  []uint32 `json:"entries"`
	Linear   bool     `json:"linear"`
	Modified []int    `json:"modified"`
}

func readLine(c *gin.Context) (string, bool) {
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLineLength+1))
	if err != nil {
		c.String(http.StatusBadRequest, "%s\n", err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return "", false
	}
	if len(b) > maxLineLength {
		err := fmt.Errorf("request body exceeds %d bytes", maxLineLength)
		c.String(http.StatusRequestEntityTooLarge, "%s\n", err.Error())
		_ = c.AbortWithError(http.StatusRequestEntityTooLarge, err)
		return "", false
	}
	return string(b), true
}

// writeHandler adapts a gateway writer to an HTTP handler. The response body
// is the number of bytes consumed.
func writeHandler(op func(string) (int, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		line, ok := readLine(c)
		if !ok {
			return
		}

		n, err := op(line)
		if err != nil {
			status := statusFromError(err)
			c.String(status, "%s\n", err.Error())
			_ = c.AbortWithError(status, err)
			return
		}

		c.String(http.StatusCreated, "%d", n)
	}
}

func statusFromError(err error) int {
	if kcal.IsValidationError(err) || errors.Is(err, kcal.ErrRejected) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func getLUTReset(c *gin.Context) {
	c.String(http.StatusOK, "")
}

func getLUTEdit(c *gin.Context) {
	c.String(http.StatusOK, "%s\n", gateway.LUTStatus())
}

func getTriplet(c *gin.Context) {
	s, err := gateway.Triplet()
	if err != nil {
		logrus.Errorf("failed to read triplet: %v", err)
		c.String(http.StatusInternalServerError, "%s\n", err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.String(http.StatusOK, "%s\n", s)
}

func getApply(c *gin.Context) {
	c.String(http.StatusOK, "%s\n", gateway.ApplyStatus())
}

func getVersion(c *gin.Context) {
	c.String(http.StatusOK, "%s\n", gateway.Version().String())
}

func postResume(c *gin.Context) {
	code := gateway.Resume()
	if code != kcal.StatusOK {
		err := &kcal.RefreshError{Code: code}
		c.String(http.StatusInternalServerError, "%s\n", err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.String(http.StatusOK, "%s\n", kcal.StatusTextOK)
}

func getLUT(c *gin.Context) {
	t := gateway.WorkingLUT()
	c.IndentedJSON(http.StatusOK, LUTResponse{
		Entries:  t[:],
		Linear:   t.IsLinear(),
		Modified: t.Modified(),
	})
}

func getLUTEntry(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= lut.Size {
		err = fmt.Errorf("index must be between 0 and %d, got %q", lut.Size-1, c.Param("index"))
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	t := gateway.WorkingLUT()
	c.IndentedJSON(http.StatusOK, t[idx])
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getEvents(c *gin.Context) {
	sub := sseHub.Subscribe()
	defer sseHub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// Send the headers now so the subscriber knows it is registered before
	// the first event.
	c.Status(http.StatusOK)
	c.Writer.Flush()

	logrus.Debug("event subscriber connected")
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		}
	})
	logrus.WithField("dropped", sub.Dropped()).Debug("event subscriber disconnected")
}

// ReapplyStatus is the body of the /reapply endpoints.
type ReapplyStatus struct {
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"nextRun,omitempty"`
}

func currentReapplyStatus() ReapplyStatus {
	st := ReapplyStatus{Schedule: conf.ReapplySchedule()}
	if next, _ := reapplyS.Status(); !next.IsZero() {
		st.NextRun = &next
	}
	return st
}

func getReapply(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, currentReapplyStatus())
}

func setReapply(c *gin.Context) {
	line, ok := readLine(c)
	if !ok {
		return
	}
	expr := strings.TrimSpace(line)

	if err := reapplyS.Schedule(expr); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetReapplySchedule(expr)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if expr == "" {
		logrus.Info("re-apply schedule disabled")
	} else {
		logrus.Infof("set re-apply schedule to %q", expr)
	}

	c.IndentedJSON(http.StatusCreated, currentReapplyStatus())
}

func skipReapply(c *gin.Context) {
	if err := reapplyS.Skip(); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	logrus.Info("next scheduled re-apply skipped")
	c.IndentedJSON(http.StatusOK, currentReapplyStatus())
}
