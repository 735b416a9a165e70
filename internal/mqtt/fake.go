package mqtt

// FakePublisher records published readings for test assertions.
type FakePublisher struct {
	// Readings contains all reading sets that were published.
	Readings []Readings

	// Payloads maps topic to the sequence of payloads published on it.
	Payloads map[string][]string

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishReadings.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Payloads: make(map[string][]string)}
}

// PublishReadings records the readings and their wire payloads.
func (f *FakePublisher) PublishReadings(r Readings) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Readings = append(f.Readings, r)
	for _, msg := range messagesFor(r) {
		f.Payloads[msg.topic] = append(f.Payloads[msg.topic], string(msg.payload))
	}
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// IsConnected returns the configured connection state.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// LastPayload returns the most recent payload published on topic, or "".
func (f *FakePublisher) LastPayload(topic string) string {
	p := f.Payloads[topic]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Reset clears all recorded events.
func (f *FakePublisher) Reset() {
	f.Readings = nil
	f.Payloads = make(map[string][]string)
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
}
