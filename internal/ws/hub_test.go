package ws

import (
	"testing"

	"go.uber.org/zap"

	"artmarket/internal/domain"
)

func testClient(h *Hub, userID string) *Client {
	return &Client{
		hub:    h,
		userID: userID,
		send:   make(chan Event, sendQueueSize),
	}
}

func TestHubSend_DeliversToAllUserConnections(t *testing.T) {
	h := NewHub(zap.NewNop())
	first := testClient(h, "u1")
	second := testClient(h, "u1")
	other := testClient(h, "u2")
	h.add(first)
	h.add(second)
	h.add(other)

	h.Send("u1", Event{Type: "test"})

	for _, c := range []*Client{first, second} {
		select {
		case ev := <-c.send:
			if ev.Type != "test" {
				t.Fatalf("unexpected event type %q", ev.Type)
			}
		default:
			t.Fatalf("expected event delivered")
		}
	}
	select {
	case <-other.send:
		t.Fatalf("expected no event for other user")
	default:
	}
}

func TestHubSend_DropsWhenQueueFull(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := testClient(h, "u1")
	h.add(c)

	for i := 0; i < sendQueueSize+10; i++ {
		h.Send("u1", Event{Type: "flood"})
	}

	if len(c.send) != sendQueueSize {
		t.Fatalf("expected queue capped at %d, got %d", sendQueueSize, len(c.send))
	}
}

func TestHubConnections(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := testClient(h, "u1")

	if h.Connections("u1") != 0 {
		t.Fatalf("expected no connections")
	}
	h.add(c)
	if h.Connections("u1") != 1 {
		t.Fatalf("expected one connection")
	}
	h.remove(c)
	if h.Connections("u1") != 0 {
		t.Fatalf("expected connection removed")
	}
}

func TestHubNotifyNewMessage_TargetsReceiver(t *testing.T) {
	h := NewHub(zap.NewNop())
	sender := testClient(h, "u1")
	receiver := testClient(h, "u2")
	h.add(sender)
	h.add(receiver)

	h.NotifyNewMessage(domain.Message{ID: "m1", SenderID: "u1", ReceiverID: "u2", Content: "hola"})

	select {
	case ev := <-receiver.send:
		if ev.Type != "message.new" {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	default:
		t.Fatalf("expected receiver notified")
	}
	select {
	case <-sender.send:
		t.Fatalf("expected sender not notified")
	default:
	}
}

func TestHubNotifyRead_TargetsOriginalSender(t *testing.T) {
	h := NewHub(zap.NewNop())
	sender := testClient(h, "u1")
	h.add(sender)

	h.NotifyRead("u1", "u2", 3)

	select {
	case ev := <-sender.send:
		if ev.Type != "messages.read" {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
		payload, ok := ev.Payload.(map[string]any)
		if !ok || payload["reader_id"] != "u2" {
			t.Fatalf("unexpected payload %v", ev.Payload)
		}
	default:
		t.Fatalf("expected read receipt delivered")
	}
}
