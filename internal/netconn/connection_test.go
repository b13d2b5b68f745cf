package netconn

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/43d9ab5/ferrumc/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestConnection_StateTransitions(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := New(server, testLogger())
	if c.State() != protocol.StateHandshake {
		t.Fatalf("expected initial state Handshake, got %v", c.State())
	}
	c.SetState(protocol.StateStatus)
	if c.State() != protocol.StateStatus {
		t.Fatalf("expected Status, got %v", c.State())
	}
}

func TestConnection_WritePacketSerializesConcurrentWriters(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	c := New(server, testLogger())

	const writers = 20
	readErr := make(chan error, 1)
	go func() {
		// Every frame must arrive whole: a keep-alive frame interleaved with
		// another writer's bytes would decode to a wrong id or length.
		for i := 0; i < writers; i++ {
			f, err := protocol.ReadFrame(client, 0)
			if err == nil && (f.ID != protocol.PacketKeepAliveOut || len(f.Payload) != 8) {
				err = fmt.Errorf("frame %d: got id=0x%02x payload_len=%d", i, f.ID, len(f.Payload))
			}
			if err != nil {
				readErr <- err
				_, _ = io.Copy(io.Discard, client)
				return
			}
		}
		readErr <- nil
	}()

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			payload, _ := protocol.EncodeKeepAlive(int64(n))
			_ = c.WritePacket(protocol.PacketKeepAliveOut, payload)
		}(i)
	}
	wg.Wait()
	c.Close()
	if err := <-readErr; err != nil {
		t.Fatalf("concurrent writes were not serialized: %v", err)
	}
}

func TestTable_AddRemoveGet(t *testing.T) {
	_, server := net.Pipe()
	defer server.Close()

	tbl := NewTable()
	c := New(server, testLogger())
	tbl.Add(c)

	got, ok := tbl.Get(c.ID)
	if !ok || got != c {
		t.Fatalf("expected to find connection %d", c.ID)
	}

	tbl.Remove(c)
	if _, ok := tbl.Get(c.ID); ok {
		t.Fatal("expected connection removed")
	}
}
