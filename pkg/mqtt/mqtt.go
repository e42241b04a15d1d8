// Package mqtt publishes the received hits to a mqtt broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// queue is the number of messages waiting to be published.
	queue = 16
	// connectTimeout limits the wait for the broker connection.
	connectTimeout = 5 * time.Second
)

var (
	ErrQueueFull      = errors.New("mqtt queue full")
	ErrConnectTimeout = errors.New("mqtt connect timeout")
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	client mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// NewMessage returns a message with the json encoding of v as payload.
func NewMessage(topic string, v interface{}) (Message, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encode mqtt payload: %w", err)
	}
	return Message{Topic: topic, Payload: b}, nil
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message, queue),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqttlib.Client, err error) {
			debug.ErrorLog.Printf("mqtt connection lost: %v", err)
		})
	m.client = mqttlib.NewClient(opts)
	return m.connect()
}

func (m *Handler) connect() error {
	t := m.client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return ErrConnectTimeout
	}
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.client == nil {
		return nil
	}

	m.client.Disconnect(quiesce)
	return nil
}

// Publish queues msg without blocking.
func (m *Handler) Publish(msg Message) error {
	select {
	case m.C <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Service listen to a message on the channel C and send the message to mqtt
// until channel C is closed.
// If no client or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	for msg := range m.C {
		if m.client == nil || msg.Topic == "" {
			continue
		}

		if !m.client.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.connect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.client.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}
