package ptr

import "testing"

func TestInt(t *testing.T) {
	p := Int(42)
	if *p != 42 {
		t.Errorf("Expected 42, got %d", *p)
	}
	if Int(42) == p {
		t.Error("Expected different address")
	}
}
