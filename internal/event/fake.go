package event

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Events contains all events that were published.
	Events []Event

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Handler is the registered command handler, if any.
	Handler CommandHandler
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the event.
func (f *FakePublisher) Publish(ev Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Events = append(f.Events, ev)

	payload, err := FormatPayload(ev)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// SubscribeCommands records the handler so tests can inject frames.
func (f *FakePublisher) SubscribeCommands(handler CommandHandler) error {
	f.Handler = handler
	return nil
}

// Inject delivers a frame to the registered handler.
func (f *FakePublisher) Inject(payload []byte) {
	if f.Handler != nil {
		f.Handler(payload)
	}
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
	f.Handler = nil
}

// CodesPublished returns just the codes, in publish order.
func (f *FakePublisher) CodesPublished() []Code {
	codes := make([]Code, len(f.Events))
	for i, ev := range f.Events {
		codes[i] = ev.Code
	}
	return codes
}
