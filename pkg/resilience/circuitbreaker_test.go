package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errProvider = errors.New("provider down")

func failing(context.Context) error { return errProvider }
func succeeding(context.Context) error { return nil }

// testBreaker returns a breaker with a controllable clock.
func testBreaker(opts BreakerOpts) (*Breaker, *time.Time) {
	b := NewBreaker(opts)
	clock := time.Now()
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b, _ := testBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute, HalfOpenMax: 1})

	for i := 0; i < 3; i++ {
		if err := b.Call(context.Background(), failing); !errors.Is(err, errProvider) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Call(context.Background(), succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker let call through: %v", err)
	}
}

func TestBreaker_StaysClosedBelowThreshold(t *testing.T) {
	b, _ := testBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute, HalfOpenMax: 1})

	b.Call(context.Background(), failing)
	b.Call(context.Background(), failing)
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after 2 of 3 failures", b.State())
	}

	// A success resets the consecutive failure count.
	b.Call(context.Background(), succeeding)
	b.Call(context.Background(), failing)
	b.Call(context.Background(), failing)
	if b.State() != StateClosed {
		t.Errorf("state = %v, failures should have reset on success", b.State())
	}
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b, clock := testBreaker(BreakerOpts{FailThreshold: 1, Timeout: 30 * time.Second, HalfOpenMax: 1})

	b.Call(context.Background(), failing)
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	*clock = clock.Add(31 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after timeout", b.State())
	}
}

func TestBreaker_HalfOpenProbeSuccessCloses(t *testing.T) {
	b, clock := testBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second, HalfOpenMax: 1})

	b.Call(context.Background(), failing)
	*clock = clock.Add(2 * time.Second)

	if err := b.Call(context.Background(), succeeding); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", b.State())
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b, clock := testBreaker(BreakerOpts{FailThreshold: 5, Timeout: time.Second, HalfOpenMax: 1})

	for i := 0; i < 5; i++ {
		b.Call(context.Background(), failing)
	}
	*clock = clock.Add(2 * time.Second)

	if err := b.Call(context.Background(), failing); !errors.Is(err, errProvider) {
		t.Fatalf("probe err = %v", err)
	}
	if b.State() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", b.State())
	}
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	b, clock := testBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second, HalfOpenMax: 1})

	b.Call(context.Background(), failing)
	*clock = clock.Add(2 * time.Second)
	b.State() // transition to half-open

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Call(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// Probe budget spent; concurrent calls are rejected.
	if err := b.Call(context.Background(), succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second probe err = %v, want ErrCircuitOpen", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("probe err = %v", err)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(9):      "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
