package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/events"
)

// SubscribeEvents streams daemon events until ctx is done or the connection
// drops. The returned channel is closed when the stream ends.
func (c *Client) SubscribeEvents(ctx context.Context) <-chan events.Event {
	out := make(chan events.Event, 16)

	go func() {
		defer close(out)

		req, err := newRequest(ctx, http.MethodGet, "/events", "")
		if err != nil {
			logrus.WithError(err).Error("failed to create event request")
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithError(err).Error("failed to subscribe to events")
			}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			logrus.Errorf("event subscription failed with status %d", resp.StatusCode)
			return
		}

		readEvents(ctx, bufio.NewScanner(resp.Body), out)
	}()

	return out
}

// readEvents decodes "event:" / "data:" blocks separated by blank lines.
func readEvents(ctx context.Context, sc *bufio.Scanner, out chan<- events.Event) {
	var name string
	var data strings.Builder

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name == "" && data.Len() == 0 {
				continue
			}
			ev := events.Event{Name: name, Data: json.RawMessage(data.String())}
			name = ""
			data.Reset()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}
