// Package events publishes domain notifications to an MQTT broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/models"
)

// Publisher receives notifications after successful writes. Implementations
// must not fail the calling request; delivery problems are only logged.
type Publisher interface {
	PublishWeatherIngested(ctx context.Context, event WeatherIngested)
	PublishLocationDeleted(ctx context.Context, location models.LocationResponse)
	Close()
}

// WeatherIngested describes one completed fetch-and-store run.
type WeatherIngested struct {
	LocationID string    `json:"locationId"`
	From       string    `json:"fromDate"`
	To         string    `json:"toDate"`
	Fetched    int       `json:"fetched"`
	Inserted   int64     `json:"inserted"`
	At         time.Time `json:"at"`
}

type locationDeleted struct {
	models.LocationResponse
	At time.Time `json:"at"`
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishWeatherIngested(context.Context, WeatherIngested)         {}
func (NopPublisher) PublishLocationDeleted(context.Context, models.LocationResponse) {}
func (NopPublisher) Close()                                                          {}

const (
	qos            = 1
	publishTimeout = 5 * time.Second
)

// MQTTPublisher publishes JSON events under a topic prefix.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

// NewMQTTPublisher connects to the broker. The client reconnects on its own
// after the initial connection succeeds.
func NewMQTTPublisher(brokerURL, clientID, prefix string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return newMQTTPublisher(client, prefix), nil
}

func newMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix}
}

func (p *MQTTPublisher) topic(locationID, event string) string {
	return fmt.Sprintf("%s/locations/%s/%s", p.prefix, locationID, event)
}

func (p *MQTTPublisher) PublishWeatherIngested(ctx context.Context, event WeatherIngested) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	p.publish(ctx, p.topic(event.LocationID, "weather"), event)
}

func (p *MQTTPublisher) PublishLocationDeleted(ctx context.Context, location models.LocationResponse) {
	p.publish(ctx, p.topic(location.ID, "deleted"), locationDeleted{LocationResponse: location, At: time.Now().UTC()})
}

func (p *MQTTPublisher) publish(ctx context.Context, topic string, payload any) {
	logger := log.WithField("topic", topic)

	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("Failed to encode event")
		return
	}

	token := p.client.Publish(topic, qos, false, body)
	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !token.WaitTimeout(timeout) {
		logger.Warn("Timed out publishing event")
		return
	}
	if err := token.Error(); err != nil {
		logger.WithError(err).Warn("Failed to publish event")
		return
	}
	logger.Debug("Published event")
}

// Close disconnects from the broker, allowing in-flight messages a short grace period.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
