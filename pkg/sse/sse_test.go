package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/sse"
)

func TestBrokerStreamsPublishedEvents(t *testing.T) {
	broker := sse.NewBroker()
	srv := httptest.NewServer(broker)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	broker.Publish("product.created", map[string]string{"sku": "LAMP-1"})

	var frame []string
	for len(frame) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			frame = append(frame, line)
		}
	}
	assert.Equal(t, []string{"event: product.created", `data: {"sku":"LAMP-1"}`}, frame)

	cancel()
	assert.Eventually(t, func() bool { return broker.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	broker := sse.NewBroker()
	assert.NotPanics(t, func() { broker.Publish("product.deleted", map[string]string{"id": "1"}) })
	assert.Equal(t, 0, broker.Subscribers())
}
