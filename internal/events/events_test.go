package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Event / Multi
// ════════════════════════════════════════════════════════════════════

func TestAnalysisComplete(t *testing.T) {
	url := "/download/x.pdf"
	rep := &models.AnalysisReport{
		Queries: []string{"Tesla"},
		Results: map[string]models.QueryResult{
			"Tesla": {Overview: models.SentimentOverview{Positive: 2, Total: 2}},
		},
		ReportURL: &url,
	}
	ev := AnalysisComplete(rep, true)
	if ev.Type != TypeAnalysisComplete || !ev.SocialOnly || ev.ReportURL != &url {
		t.Errorf("event = %+v", ev)
	}
	if ev.Totals["Tesla"].Positive != 2 {
		t.Errorf("totals = %+v", ev.Totals)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"analysis_complete"`) {
		t.Errorf("json = %s", data)
	}
}

type recordPublisher struct {
	got []Event
	err error
}

func (r *recordPublisher) Publish(ctx context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti(t *testing.T) {
	a := &recordPublisher{}
	b := &recordPublisher{err: errors.New("sink down")}
	c := &recordPublisher{}
	m := Multi{a, nil, b, c}

	err := m.Publish(context.Background(), Event{Type: "x"})
	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Errorf("err = %v", err)
	}
	if len(a.got) != 1 || len(c.got) != 1 {
		t.Error("a failing sink must not stop the others")
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	b := &recordPublisher{err: errors.New("boom")}
	Notify(context.Background(), b, Event{Type: "x"}, nil)
	Notify(context.Background(), nil, Event{Type: "x"}, nil)
	if len(b.got) != 1 {
		t.Error("event not delivered")
	}
}

// ════════════════════════════════════════════════════════════════════
// Hub
// ════════════════════════════════════════════════════════════════════

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	c1, c2 := h.Register(), h.Register()
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.Publish(ctx, Event{Type: TypeAnalysisComplete}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*Client{c1, c2} {
		select {
		case ev := <-c.Send():
			if ev.Type != TypeAnalysisComplete {
				t.Errorf("got %q", ev.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	h.Unregister(c1)
	waitFor(t, func() bool { return h.ClientCount() == 1 })
	if _, ok := <-c1.Send(); ok {
		t.Error("unregistered client queue should be closed")
	}
	h.Unregister(c1) // second call is harmless
}

func TestHubDropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	h.queueSize = 1
	go h.Run(ctx)

	c := h.Register()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	for i := 0; i < 3; i++ {
		h.Publish(ctx, Event{Type: "tick"})
	}
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	n := 0
	for range c.Send() {
		n++
	}
	if n != 1 {
		t.Errorf("slow client received %d events before drop, want 1", n)
	}
}

func TestHubStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)

	c := h.Register()
	waitFor(t, func() bool { return h.ClientCount() == 1 })
	cancel()

	select {
	case _, ok := <-c.Send():
		if ok {
			t.Error("expected closed queue")
		}
	case <-time.After(time.Second):
		t.Fatal("client not released on stop")
	}
	if h.Register() != nil {
		t.Error("Register after stop should return nil")
	}
}

// ════════════════════════════════════════════════════════════════════
// NATS
// ════════════════════════════════════════════════════════════════════

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return f.err
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher(t *testing.T) {
	conn := &fakeConn{}
	p := &NATSPublisher{conn: conn, subject: DefaultSubject}

	if err := p.Publish(context.Background(), Event{Type: TypeAnalysisComplete, Queries: []string{"Tesla"}}); err != nil {
		t.Fatal(err)
	}
	if conn.subject != "pulsewatch.analysis" {
		t.Errorf("subject = %q", conn.subject)
	}
	var ev Event
	if err := json.Unmarshal(conn.data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Queries[0] != "Tesla" {
		t.Errorf("payload = %s", conn.data)
	}

	conn.err = errors.New("nats: connection closed")
	if err := p.Publish(context.Background(), Event{}); err == nil {
		t.Error("expected publish error")
	}

	if err := p.Close(); err != nil || !conn.drained {
		t.Error("Close should drain the connection")
	}
}

func TestNewNATSPublisherRequiresURL(t *testing.T) {
	if _, err := NewNATSPublisher("", "", nil); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	// port 1 on loopback refuses immediately
	if _, err := NewNATSPublisher("nats://127.0.0.1:1", "", nil); err == nil {
		t.Error("expected connect error")
	}
}
