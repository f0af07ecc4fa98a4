package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ride-admin-backend/internal/models"
)

func TestHubPublisherQueuesFeedMessage(t *testing.T) {
	hub := NewHub(nil)
	pub := NewHubPublisher(hub)

	event := models.RideEvent{ID: 4, RideID: 2, Description: "Rider picked up", CreatedAt: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, pub.PublishRideEvent(context.Background(), event))

	select {
	case raw := <-hub.broadcast:
		var msg FeedMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "ride_event", msg.Type)
		assert.Equal(t, event, msg.Data)
	default:
		t.Fatal("expected a queued broadcast")
	}
}

func TestHubDeliversToClientsAndStops(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := &Client{ID: 1, Send: make(chan []byte, 1), Hub: hub}
	hub.register <- client

	hub.Broadcast([]byte(`{"type":"ride_event"}`))
	select {
	case msg := <-client.Send:
		assert.JSONEq(t, `{"type":"ride_event"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("client did not receive broadcast")
	}
	assert.Equal(t, 1, hub.GetConnectedClients())

	hub.Stop()
	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client channel was not closed on stop")
	}
}
