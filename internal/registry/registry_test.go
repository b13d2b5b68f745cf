package registry

import (
	"testing"

	"github.com/43d9ab5/ferrumc/internal/protocol"
)

func TestRegistry_LookupFindsRegisteredHandler(t *testing.T) {
	r := New()
	called := false
	r.Register(protocol.StateStatus, protocol.Serverbound, protocol.PacketStatusRequest, func(ctx any, payload []byte) error {
		called = true
		return nil
	})

	found, err := r.Dispatch(nil, protocol.StateStatus, protocol.Serverbound, protocol.Frame{ID: protocol.PacketStatusRequest})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !found || !called {
		t.Fatal("expected handler to be found and invoked")
	}
}

func TestRegistry_UnknownIDNotFound(t *testing.T) {
	r := New()
	found, err := r.Dispatch(nil, protocol.StatePlay, protocol.Serverbound, protocol.Frame{ID: 0x7f})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if found {
		t.Fatal("expected unknown id to report not found")
	}
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r := New()
	noop := func(ctx any, payload []byte) error { return nil }
	r.Register(protocol.StateLogin, protocol.Serverbound, protocol.PacketLoginStart, noop)
	r.Register(protocol.StateLogin, protocol.Serverbound, protocol.PacketLoginStart, noop)
}
