package event

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// pendingCapacity bounds how many events are held while disconnected.
const pendingCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Events raised while
// the broker is unreachable are held in a bounded buffer and replayed on
// reconnect, so short link drops do not lose failsafe transitions.
type RealPublisher struct {
	client paho.Client

	mu      sync.Mutex
	pending *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{pending: newRingBuffer(pendingCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("rover-core").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.replayPending()
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// Publish sends a coded event to the broker, buffering it if the
// connection is down.
func (p *RealPublisher) Publish(ev Event) error {
	payload, err := FormatPayload(ev)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	if !p.client.IsConnected() {
		p.mu.Lock()
		p.pending.push(bufferedMsg{payload: payload, retained: ev.Retained})
		p.mu.Unlock()
		return nil
	}

	return p.send(payload, ev.Retained)
}

func (p *RealPublisher) send(payload []byte, retained bool) error {
	// QoS 1 (at-least-once): external consumers key off these codes.
	token := p.client.Publish(Topic, 1, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RealPublisher) replayPending() {
	p.mu.Lock()
	msgs := p.pending.drainAll()
	p.mu.Unlock()

	for _, msg := range msgs {
		if err := p.send(msg.payload, msg.retained); err != nil {
			log.Printf("event: replay failed: %v", err)
		}
	}
}

// SubscribeCommands registers the handler for inbound command frames.
func (p *RealPublisher) SubscribeCommands(handler CommandHandler) error {
	token := p.client.Subscribe(TopicCommands, 0, func(_ paho.Client, msg paho.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe commands: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
