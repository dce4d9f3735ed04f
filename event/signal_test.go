package event

import "testing"

func TestSignalOrderAndUnsubscribe(t *testing.T) {
	var sig Signal[int]
	var got []string

	unsubA := sig.Subscribe(func(v int) { got = append(got, "a") })
	sig.Subscribe(func(v int) { got = append(got, "b") })

	sig.Emit(1)
	unsubA()
	unsubA()
	sig.Emit(2)

	want := []string{"a", "b", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if sig.Len() != 1 {
		t.Fatalf("expected 1 handler, got %d", sig.Len())
	}
}

func TestSignalUnsubscribeDuringEmit(t *testing.T) {
	var sig Trigger
	calls := 0
	var unsub func()
	unsub = sig.Subscribe(func(struct{}) {
		calls++
		unsub()
	})
	sig.Subscribe(func(struct{}) { calls++ })

	Fire(&sig)
	Fire(&sig)

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestScopeReleasesSymmetrically(t *testing.T) {
	var a Signal[string]
	var b Trigger
	var scope Scope

	scope.Open()
	hits := 0
	On(&scope, &a, func(string) { hits++ })
	OnFire(&scope, &b, func() { hits++ })

	if !scope.Active() || scope.Len() != 2 {
		t.Fatalf("scope should be active with 2 subscriptions")
	}

	a.Emit("x")
	Fire(&b)
	scope.Close()
	a.Emit("y")
	Fire(&b)

	if hits != 2 {
		t.Fatalf("expected 2 hits before close, got %d", hits)
	}
	if a.Len() != 0 || b.Len() != 0 {
		t.Fatalf("signals should have no handlers after close")
	}
	if scope.Active() {
		t.Fatalf("scope should be inactive after close")
	}
}
