package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

const (
	defaultMQTTTopic    = "eatsafe/alerts"
	defaultMQTTClientID = "eatsafe"
	mqttConnectTimeout  = 30 * time.Second
	mqttDisconnectQuiet = 250 // milliseconds
)

// mqttPublisher is the subset of mqtt.Client the notifier uses.
type mqttPublisher interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes alerts as JSON to a broker topic.
type MQTTNotifier struct {
	client mqttPublisher
	topic  string
	qos    byte
	retain bool
}

// NewMQTTNotifier connects to the broker in cfg in the background. The paho
// client keeps retrying the connection; Send fails while it is down.
func NewMQTTNotifier(cfg *conf.MQTTSettings, log logger.Logger) (*MQTTNotifier, error) {
	if cfg.Broker == "" {
		return nil, errors.Newf("mqtt broker is not configured").
			Component("alerts").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.QoS < 0 || cfg.QoS > 2 {
		return nil, errors.Newf("mqtt qos must be 0, 1 or 2, got %d", cfg.QoS).
			Component("alerts").
			Category(errors.CategoryConfiguration).
			Build()
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultMQTTClientID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("connected to MQTT broker", logger.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("connection to MQTT broker lost",
			logger.String("broker", cfg.Broker),
			logger.Error(err))
	})

	client := mqtt.NewClient(opts)
	client.Connect()

	return newMQTTNotifier(client, cfg), nil
}

func newMQTTNotifier(client mqttPublisher, cfg *conf.MQTTSettings) *MQTTNotifier {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultMQTTTopic
	}
	return &MQTTNotifier{
		client: client,
		topic:  topic,
		qos:    byte(cfg.QoS), //nolint:gosec // range checked by the caller
		retain: cfg.Retain,
	}
}

func (n *MQTTNotifier) Name() string { return "mqtt" }

// Send publishes a and waits for the broker acknowledgement or ctx.
func (n *MQTTNotifier) Send(ctx context.Context, a Alert) error {
	if !n.client.IsConnectionOpen() {
		return n.wrapErr(fmt.Errorf("not connected to MQTT broker"))
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return n.wrapErr(fmt.Errorf("failed to encode alert: %w", err))
	}

	token := n.client.Publish(n.topic, n.qos, n.retain, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return n.wrapErr(fmt.Errorf("publish failed: %w", err))
		}
		return nil
	case <-ctx.Done():
		return n.wrapErr(fmt.Errorf("publish timeout: %w", ctx.Err()))
	}
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() error {
	n.client.Disconnect(mqttDisconnectQuiet)
	return nil
}

func (n *MQTTNotifier) wrapErr(err error) error {
	return errors.New(err).
		Component("alerts").
		Category(errors.CategoryNotification).
		Context("notifier", n.Name()).
		Context("topic", n.topic).
		Build()
}
