package mqtt

import "testing"

func msg(topic, payload string) message {
	return message{topic: topic, payload: []byte(payload)}
}

func TestRingBufferEmptyDrain(t *testing.T) {
	r := newRingBuffer(4)
	if got := r.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %v", got)
	}
	if r.len() != 0 {
		t.Errorf("expected len 0, got %d", r.len())
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	r := newRingBuffer(4)
	r.push(msg(TopicFlow, "1.00"))
	r.push(msg(TopicTotal, "10.000"))

	if r.len() != 2 {
		t.Fatalf("expected len 2, got %d", r.len())
	}

	drained := r.drainAll()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained, got %d", len(drained))
	}
	if drained[0].topic != TopicFlow || string(drained[0].payload) != "1.00" {
		t.Errorf("unexpected first message %+v", drained[0])
	}
	if drained[1].topic != TopicTotal {
		t.Errorf("unexpected second message %+v", drained[1])
	}
	if r.len() != 0 {
		t.Errorf("expected empty buffer after drain, got len %d", r.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)
	r.push(msg(TopicFlow, "1"))
	r.push(msg(TopicFlow, "2"))
	r.push(msg(TopicFlow, "3"))
	r.push(msg(TopicFlow, "4")) // overwrites "1"

	drained := r.drainAll()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained, got %d", len(drained))
	}
	want := []string{"2", "3", "4"}
	for i, w := range want {
		if string(drained[i].payload) != w {
			t.Errorf("position %d: expected %q, got %q", i, w, drained[i].payload)
		}
	}
}

func TestRingBufferMultipleCycles(t *testing.T) {
	r := newRingBuffer(2)
	for cycle := 0; cycle < 5; cycle++ {
		r.push(msg(TopicFlow, "a"))
		r.push(msg(TopicTotal, "b"))
		drained := r.drainAll()
		if len(drained) != 2 {
			t.Fatalf("cycle %d: expected 2 drained, got %d", cycle, len(drained))
		}
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	r := newRingBuffer(2)
	r.push(message{topic: TopicTotal, payload: []byte("5.000"), qos: 1, retained: true})

	drained := r.drainAll()
	if len(drained) != 1 {
		t.Fatal("expected 1 drained")
	}
	m := drained[0]
	if m.topic != TopicTotal || string(m.payload) != "5.000" || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}
