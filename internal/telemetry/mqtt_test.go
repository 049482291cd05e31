package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/events"
)

type doneToken struct{ ch chan struct{} }

func newDoneToken() *doneToken {
	ch := make(chan struct{})
	close(ch)
	return &doneToken{ch: ch}
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.ch }
func (t *doneToken) Error() error                   { return nil }

type published struct {
	topic string
	data  []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	messages  []published
}

func (f *fakePublisher) IsConnected() bool { return f.connected }

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, data: payload.([]byte)})
	return newDoneToken()
}

func newTestHandler(pub *fakePublisher) *MQTTHandler {
	return &MQTTHandler{
		cfg:      config.MQTTConfig{TopicPrefix: "wordlebot/"},
		pub:      pub,
		metadata: map[string]interface{}{"hostname": "test-host"},
	}
}

func TestHandlerPublishesGameEvents(t *testing.T) {
	pub := &fakePublisher{connected: true}
	h := newTestHandler(pub)
	bus := events.NewEventBus()
	h.Register(bus)

	ctx := context.Background()
	bus.EmitSync(ctx, events.Event{Type: events.EventSessionStarted, Payload: events.SessionStartedPayload{SessionID: "abc123"}})
	bus.EmitSync(ctx, events.Event{Type: events.EventGuessSent, Payload: events.GuessSentPayload{Word: "crane"}})
	bus.EmitSync(ctx, events.Event{Type: events.EventGameFinished, Payload: events.GameFinishedPayload{Outcome: events.OutcomeWon}})
	h.Close()

	want := []string{"wordlebot/session", "wordlebot/guess", "wordlebot/result"}
	if len(pub.messages) != len(want) {
		t.Fatalf("published %d messages, want %d", len(pub.messages), len(want))
	}
	for i, topic := range want {
		if pub.messages[i].topic != topic {
			t.Errorf("message %d topic = %q, want %q", i, pub.messages[i].topic, topic)
		}
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(pub.messages[0].data, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg["hostname"] != "test-host" || msg["event"] != "session_started" {
		t.Errorf("message = %v", msg)
	}
	payload, _ := msg["payload"].(map[string]interface{})
	if payload["session_id"] != "abc123" {
		t.Errorf("payload = %v", payload)
	}
}

func TestHandlerSkipsWhenDisconnected(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(pub)
	h.onGameFinished(context.Background(), events.Event{Type: events.EventGameFinished})
	h.Close()

	if len(pub.messages) != 0 {
		t.Errorf("published %d messages while disconnected", len(pub.messages))
	}
}

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		cfg  config.MQTTConfig
		want string
	}{
		{config.MQTTConfig{BrokerURL: "broker", Port: 8883, UseTLS: true}, "ssl://broker:8883"},
		{config.MQTTConfig{BrokerURL: "broker", Port: 1883}, "tcp://broker:1883"},
		{config.MQTTConfig{BrokerURL: "ws://broker:80/mqtt", Port: 1883}, "ws://broker:80/mqtt"},
	}
	for _, tt := range tests {
		if got := brokerURL(tt.cfg); got != tt.want {
			t.Errorf("brokerURL(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestNewMQTTHandlerDisabled(t *testing.T) {
	if _, err := NewMQTTHandler(config.MQTTConfig{}); err == nil {
		t.Error("NewMQTTHandler() with MQTT disabled should fail")
	}
}
