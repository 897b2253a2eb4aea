package events

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const DefaultMQTTConnectTimeout = 5 * time.Second

var ErrMQTTBrokerRequired = errors.New("events: mqtt broker required")

// MQTTConfig configures the MQTT event sink.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte

	// ConnectTimeout bounds the initial connect wait. The client keeps
	// retrying in the background once it expires.
	ConnectTimeout time.Duration
}

// publisher is the subset of mqtt.Client used by the sink.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes each event as JSON to <topic>/<event type>.
type MQTTSink struct {
	client publisher
	topic  string
	qos    byte
}

// DialMQTT connects to the broker and returns a sink. An unreachable broker
// does not fail the dial: events published before the first connect are
// dropped and paho keeps retrying.
func DialMQTT(cfg MQTTConfig) (*MQTTSink, mqtt.Client, error) {
	broker := strings.TrimSpace(cfg.Broker)
	if broker == "" {
		return nil, nil, ErrMQTTBrokerRequired
	}
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		clientID = generateClientID()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("mqtt connection lost")
	})

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultMQTTConnectTimeout
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		log.Warn().
			Str("broker", broker).
			Dur("timeout", timeout).
			Msg("mqtt broker not reachable yet, retrying in background")
		return newMQTTSink(client, cfg.Topic, cfg.QoS), client, nil
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, nil, fmt.Errorf("events: mqtt connect %s: %w", broker, err)
	}
	return newMQTTSink(client, cfg.Topic, cfg.QoS), client, nil
}

func newMQTTSink(client publisher, topic string, qos byte) *MQTTSink {
	topic = strings.TrimRight(strings.TrimSpace(topic), "/")
	if topic == "" {
		topic = "radiotest"
	}
	return &MQTTSink{client: client, topic: topic, qos: qos}
}

func (s *MQTTSink) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", string(ev.Type)).Msg("mqtt marshal failed")
		return
	}
	topic := s.topic + "/" + string(ev.Type)
	token := s.client.Publish(topic, s.qos, false, payload)
	// Publish runs on the worker goroutine; delivery is checked off it.
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("mqtt publish failed")
		}
	}()
}

func generateClientID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "radiotest_" + hex.EncodeToString(b)
}
