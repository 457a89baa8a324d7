package offline

import (
	"testing"
)

func TestOfflineActionsReplayInOrder(t *testing.T) {
	var pendingSeen []int
	q := NewQueue(func(count int) { pendingSeen = append(pendingSeen, count) })

	var ran []string
	q.SetConnectivity(false)
	q.Perform(func() { ran = append(ran, "A") }, false)
	q.Perform(func() { ran = append(ran, "B") }, false)
	q.Perform(func() { ran = append(ran, "C") }, false)

	if len(ran) != 0 {
		t.Fatalf("actions ran while offline: %v", ran)
	}
	if q.Pending() != 3 {
		t.Fatalf("pending: got %d, want 3", q.Pending())
	}

	q.SetConnectivity(true)

	if got := len(ran); got != 3 {
		t.Fatalf("actions executed: got %d, want 3", got)
	}
	for i, want := range []string{"A", "B", "C"} {
		if ran[i] != want {
			t.Errorf("execution order[%d]: got %q, want %q", i, ran[i], want)
		}
	}
	if q.Pending() != 0 {
		t.Errorf("pending after flush: got %d, want 0", q.Pending())
	}

	wantSeen := []int{1, 2, 3, 0}
	if len(pendingSeen) != len(wantSeen) {
		t.Fatalf("pending observations: got %v, want %v", pendingSeen, wantSeen)
	}
	for i := range wantSeen {
		if pendingSeen[i] != wantSeen[i] {
			t.Errorf("pending observation[%d]: got %d, want %d", i, pendingSeen[i], wantSeen[i])
		}
	}
}

func TestOnlinePerformRunsSynchronously(t *testing.T) {
	q := NewQueue(nil)

	ran := false
	q.Perform(func() { ran = true }, false)
	if !ran {
		t.Error("online action did not run synchronously")
	}
}

func TestImmediateBypassesQueueWhileOffline(t *testing.T) {
	q := NewQueue(nil)
	q.SetConnectivity(false)

	ran := false
	q.Perform(func() { ran = true }, true)
	if !ran {
		t.Error("immediate action was deferred")
	}
	if q.Pending() != 0 {
		t.Errorf("pending: got %d, want 0", q.Pending())
	}
}

func TestGoingOfflineHasNoSideEffect(t *testing.T) {
	q := NewQueue(nil)
	q.SetConnectivity(false)

	ran := false
	q.Perform(func() { ran = true }, false)

	// offline -> offline must not flush
	q.SetConnectivity(false)
	if ran {
		t.Error("action ran on an offline->offline transition")
	}
}

func TestActionsEnqueuedDuringFlushWaitForNextFlush(t *testing.T) {
	q := NewQueue(nil)
	q.SetConnectivity(false)

	var ran []string
	q.Perform(func() {
		ran = append(ran, "first")
		// Reentrant enqueue: the queue is online by now, but simulate a
		// consumer that went offline again mid-flush.
		q.SetConnectivity(false)
		q.Perform(func() { ran = append(ran, "second") }, false)
	}, false)

	q.SetConnectivity(true)

	if len(ran) != 1 || ran[0] != "first" {
		t.Fatalf("first flush ran: %v, want [first]", ran)
	}
	if q.Pending() != 1 {
		t.Fatalf("pending after first flush: got %d, want 1", q.Pending())
	}

	q.SetConnectivity(true)
	if len(ran) != 2 || ran[1] != "second" {
		t.Errorf("second flush ran: %v, want [first second]", ran)
	}
}

func TestPanickingActionDoesNotHaltFlush(t *testing.T) {
	q := NewQueue(nil)
	q.SetConnectivity(false)

	var ran []string
	q.Perform(func() { panic("boom") }, false)
	q.Perform(func() { ran = append(ran, "survivor") }, false)

	q.SetConnectivity(true)

	if len(ran) != 1 || ran[0] != "survivor" {
		t.Errorf("actions after panic: got %v, want [survivor]", ran)
	}
	if q.Pending() != 0 {
		t.Errorf("pending: got %d, want 0", q.Pending())
	}
}
