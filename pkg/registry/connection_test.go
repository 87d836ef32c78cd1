package registry

import (
	"testing"
	"time"

	"relaymere.dev/pkg/encoders/subscription"
)

// recvFrame receives one frame from c.Tx, failing the test if the pump
// goroutine hasn't delivered one within the timeout.
func recvFrame(t *testing.T, c *Connection) []byte {
	t.Helper()
	select {
	case f := <-c.Tx:
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame on Tx")
		return nil
	}
}

func TestSendSucceedsWhileConnected(t *testing.T) {
	c := NewConnection("1.2.3.4:1")
	if !c.Send([]byte("hi")) {
		t.Fatal("expected Send to succeed on a fresh connection")
	}
	if got := recvFrame(t, c); string(got) != "hi" {
		t.Fatalf("Tx delivered %q", got)
	}
}

func TestSendFailsAfterMarkClosed(t *testing.T) {
	c := NewConnection("1.2.3.4:2")
	c.MarkClosed()
	if c.Send([]byte("hi")) {
		t.Fatal("expected Send to fail once closed")
	}
}

func TestSendNeverDropsRegardlessOfBacklog(t *testing.T) {
	c := NewConnection("1.2.3.4:3")
	const n = 1000
	for i := 0; i < n; i++ {
		if !c.Send([]byte("x")) {
			t.Fatalf("expected unbounded queue to accept message %d without dropping", i)
		}
	}
	for i := 0; i < n; i++ {
		if got := recvFrame(t, c); string(got) != "x" {
			t.Fatalf("frame %d = %q, want \"x\"", i, got)
		}
	}
}

func TestRequestCloseWakesIdleWriter(t *testing.T) {
	c := NewConnection("1.2.3.4:7")
	c.RequestClose()
	recvFrame(t, c)
}

func TestRequestCloseTransitionsOnlyFromConnected(t *testing.T) {
	c := NewConnection("1.2.3.4:4")
	c.MarkClosed()
	c.RequestClose()
	if c.Status() != Closed {
		t.Fatalf("Status() = %v, want Closed (RequestClose must not reopen a closed connection)", c.Status())
	}
}

func TestOpenSubscriptionSupersedesGeneration(t *testing.T) {
	c := NewConnection("1.2.3.4:5")
	id, err := subscription.ParseId("sub1")
	if err != nil {
		t.Fatalf("ParseId: %v", err)
	}
	gen1 := c.OpenSubscription(id)
	if !c.CurrentGeneration(id, gen1) {
		t.Fatal("expected gen1 to be current immediately after OpenSubscription")
	}
	gen2 := c.OpenSubscription(id)
	if c.CurrentGeneration(id, gen1) {
		t.Fatal("expected gen1 to be superseded by gen2")
	}
	if !c.CurrentGeneration(id, gen2) {
		t.Fatal("expected gen2 to be current")
	}
}

func TestCloseSubscriptionInvalidatesGeneration(t *testing.T) {
	c := NewConnection("1.2.3.4:6")
	id, err := subscription.ParseId("sub1")
	if err != nil {
		t.Fatalf("ParseId: %v", err)
	}
	gen := c.OpenSubscription(id)
	c.CloseSubscription(id)
	if c.CurrentGeneration(id, gen) {
		t.Fatal("expected CurrentGeneration to report false after CloseSubscription")
	}
}
