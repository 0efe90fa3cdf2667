package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/notify"
)

func TestStream_DeliversOnlyChildEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := notify.NewBus(nil)
	defer bus.Close()

	srv := httptest.NewServer(NewRouter(RouterConfig{StreamHandler: NewStreamHandler(bus, 8, nil)}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/children/c1/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	ev := notify.BadgeUnlocked("c1", "s1", badges.FirstResponse, today)
	ev.Seq = 9
	bus.Publish(notify.BadgeUnlocked("c2", "s2", badges.FirstResponse, today), ev)

	var lines []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "id: 9", lines[0])
	assert.Equal(t, "event: badge_unlocked", lines[1])
	assert.Contains(t, lines[2], `"child_id":"c1"`)
}
