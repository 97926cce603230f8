package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu      sync.Mutex
	handled int
	fails   int
}

func (h *recordingHandler) Topic() string { return "observations" }

func (h *recordingHandler) Handle(_ context.Context, _ []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fails > 0 {
		h.fails--
		return errors.New("transient")
	}
	h.handled++
	return nil
}

func (h *recordingHandler) handledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handled
}

func newTestConsumer(t *testing.T, opts ...ConsumerOption) *Consumer {
	t.Helper()
	base := []ConsumerOption{
		WithConsumerBrokers([]string{"127.0.0.1:1"}),
		WithConsumerWorkers(2),
		WithConsumerBufferSize(1),
		WithConsumerRetry(3, time.Millisecond, 5*time.Millisecond),
	}
	c, err := NewConsumer(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

// Readers with a send in flight must exit before the message channel closes,
// otherwise shutdown panics on a send to a closed channel.
func TestStopDrainsReadersBeforeClosingChannel(t *testing.T) {
	c := newTestConsumer(t)

	for i := 0; i < 2; i++ {
		c.workerWg.Add(1)
		go c.messageWorker()
	}
	for i := 0; i < 4; i++ {
		c.readerWg.Add(1)
		go func() {
			defer c.readerWg.Done()
			for {
				select {
				case c.msgChan <- &message{topic: "observations"}:
				case <-c.stopChan:
					return
				}
			}
		}()
	}

	// Let the senders saturate the buffer before stopping.
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWorkerRetriesHandler(t *testing.T) {
	c := newTestConsumer(t)
	h := &recordingHandler{fails: 2}
	c.RegisterHandler(h)

	c.workerWg.Add(1)
	go c.messageWorker()
	c.msgChan <- &message{topic: "observations", data: []byte(`{"symbol":"ACME"}`)}

	deadline := time.Now().Add(2 * time.Second)
	for h.handledCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("message never handled despite retries")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestStopIdempotent(t *testing.T) {
	c := newTestConsumer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
