package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// sseKeepAlive is how often an idle stream sends a comment line.
const sseKeepAlive = 25 * time.Second

// eventStream writes server-sent events. Writes are serialized so the
// keep-alive ticker and the data callback can share the response.
type eventStream struct {
	mu  sync.Mutex
	res *echo.Response
}

func newEventStream(c echo.Context) *eventStream {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	return &eventStream{res: res}
}

// Send writes one named event with a JSON payload.
func (s *eventStream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return errors.Wrap(err, "failed to write event")
	}
	s.res.Flush()

	return nil
}

// keepAlive sends comment lines until stop is closed.
func (s *eventStream) keepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			_, err := fmt.Fprint(s.res, ": keep-alive\n\n")
			if err == nil {
				s.res.Flush()
			}
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
