package client

import (
	"errors"
	"testing"
)

func TestWithLoading(t *testing.T) {
	var l Loading

	got, err := WithLoading(&l, func() (int, error) {
		if !l.Active() {
			t.Fatal("expected flag raised during the call")
		}
		return 7, nil
	})
	if got != 7 || err != nil || l.Active() {
		t.Fatalf("unexpected result %d %v active=%v", got, err, l.Active())
	}

	boom := errors.New("boom")
	_, err = WithLoading(&l, func() (int, error) { return 0, boom })
	if err != boom {
		t.Fatalf("expected the original error, got %v", err)
	}
	if l.Active() {
		t.Fatal("expected flag dropped after failure")
	}
}

func TestWithLoadingPanic(t *testing.T) {
	var l Loading
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		WithLoading(&l, func() (struct{}, error) { panic("boom") })
	}()
	if l.Active() {
		t.Fatal("expected flag dropped after panic")
	}
}
