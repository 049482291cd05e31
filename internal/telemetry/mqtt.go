// Package telemetry publishes game events to an MQTT broker.
package telemetry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/events"
	"github.com/wordlebot/wordlebot/internal/util"
)

// Topic suffixes, appended to the configured prefix.
const (
	TopicSession = "session"
	TopicGuess   = "guess"
	TopicResult  = "result"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// publisher is the part of mqtt.Client the handler uses.
type publisher interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTHandler publishes game events to an MQTT broker.
type MQTTHandler struct {
	cfg    config.MQTTConfig
	client mqtt.Client
	pub    publisher

	// Metadata included in every message
	metadata map[string]interface{}

	pending sync.WaitGroup
}

// NewMQTTHandler creates a new MQTT telemetry handler.
func NewMQTTHandler(cfg config.MQTTConfig) (*MQTTHandler, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT is disabled")
	}

	sysInfo := util.GetSystemInfo()
	handler := &MQTTHandler{
		cfg:      cfg,
		metadata: systemMetadata(sysInfo),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg))

	if cfg.ClientID != "" {
		opts.SetClientID(cfg.ClientID)
	} else {
		opts.SetClientID(fmt.Sprintf("wordlebot-%s", sysInfo.Hostname))
	}

	opts.SetAutoReconnect(false)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)

	if cfg.UseTLS {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}

		// mTLS: load client certificate
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load MQTT TLS certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}

		opts.SetTLSConfig(tlsConfig)
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Debug().Msg("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})

	handler.client = mqtt.NewClient(opts)
	handler.pub = handler.client

	return handler, nil
}

func systemMetadata(info util.SystemInfo) map[string]interface{} {
	return map[string]interface{}{
		"hostname":  info.Hostname,
		"os":        info.OS,
		"arch":      info.Architecture,
		"cpu_model": info.CPUModel,
		"cpu_cores": info.CPUCores,
		"memory_mb": info.TotalMemory,
	}
}

// brokerURL accepts either a full broker URL or a bare host.
func brokerURL(cfg config.MQTTConfig) string {
	if strings.Contains(cfg.BrokerURL, "://") {
		return cfg.BrokerURL
	}
	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.BrokerURL, cfg.Port)
}

// Connect connects to the broker. The connection attempt gives up when
// ctx is done.
func (h *MQTTHandler) Connect(ctx context.Context) error {
	log.Info().Str("broker", brokerURL(h.cfg)).Msg("connecting to MQTT broker")

	token := h.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connect failed: %w", err)
	}
	return nil
}

// Register subscribes the handler to game events on the bus.
func (h *MQTTHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventSessionStarted, "mqtt.sessionStarted", h.onSessionStarted)
	bus.Subscribe(events.EventGuessSent, "mqtt.guessSent", h.onGuessSent)
	bus.Subscribe(events.EventFeedbackReceived, "mqtt.feedbackReceived", h.onFeedbackReceived)
	bus.Subscribe(events.EventGameFinished, "mqtt.gameFinished", h.onGameFinished)
}

// Close waits for in-flight publishes and disconnects.
func (h *MQTTHandler) Close() {
	h.pending.Wait()
	if h.client != nil && h.client.IsConnected() {
		h.client.Disconnect(disconnectQuiesce)
		log.Debug().Msg("MQTT disconnected")
	}
}

func (h *MQTTHandler) topic(suffix string) string {
	prefix := strings.TrimSuffix(h.cfg.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return prefix + "/" + suffix
}

// publish sends a JSON message to an MQTT topic.
func (h *MQTTHandler) publish(topic string, event string, payload interface{}) {
	if !h.pub.IsConnected() {
		return
	}

	data, err := json.Marshal(h.buildMessage(event, payload))
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to marshal MQTT message")
		return
	}

	token := h.pub.Publish(topic, 1, false, data) // QoS 1
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}

// buildMessage combines metadata with the event payload.
func (h *MQTTHandler) buildMessage(event string, payload interface{}) map[string]interface{} {
	msg := make(map[string]interface{}, len(h.metadata)+3)
	for k, v := range h.metadata {
		msg[k] = v
	}
	msg["event"] = event
	msg["payload"] = payload
	msg["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	return msg
}

// Event handlers

func (h *MQTTHandler) onSessionStarted(ctx context.Context, event events.Event) error {
	h.publish(h.topic(TopicSession), string(event.Type), event.Payload)
	return nil
}

func (h *MQTTHandler) onGuessSent(ctx context.Context, event events.Event) error {
	h.publish(h.topic(TopicGuess), string(event.Type), event.Payload)
	return nil
}

func (h *MQTTHandler) onFeedbackReceived(ctx context.Context, event events.Event) error {
	h.publish(h.topic(TopicGuess), string(event.Type), event.Payload)
	return nil
}

func (h *MQTTHandler) onGameFinished(ctx context.Context, event events.Event) error {
	h.publish(h.topic(TopicResult), string(event.Type), event.Payload)
	return nil
}
