package capture

import (
	"bufio"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

// withRedirectedStdout points os.Stdout at a pipe we control for the
// duration of fn, so ConsoleHook.Install captures "the original stream" as
// our test pipe instead of the real process stdout, and restores it after.
func withRedirectedStdout(t *testing.T, fn func(passthroughReader *bufio.Reader)) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	saved := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = saved }()

	fn(bufio.NewReader(r))
	w.Close()
	r.Close()
}

func TestConsoleHookCapturesStdoutLineAndPassesThrough(t *testing.T) {
	withRedirectedStdout(t, func(passthrough *bufio.Reader) {
		st := store.NewConsoleStore(10)
		bus := eventbus.New()
		hook := NewConsoleHook(st, bus, clock.System{})

		if err := hook.Install(); err != nil {
			t.Fatalf("Install: %v", err)
		}

		fmt.Fprintln(os.Stdout, "hello from test")
		hook.Uninstall()

		if st.Count() != 1 {
			t.Fatalf("Count = %d, want 1", st.Count())
		}
		entries := st.Snapshot()
		if entries[0].Message != "hello from test" {
			t.Fatalf("Message = %q, want %q", entries[0].Message, "hello from test")
		}
		if entries[0].Category != "stdout" {
			t.Fatalf("Category = %q, want stdout", entries[0].Category)
		}

		line, err := passthrough.ReadString('\n')
		if err != nil {
			t.Fatalf("reading passthrough: %v", err)
		}
		if line != "hello from test\n" {
			t.Fatalf("passthrough = %q, want %q", line, "hello from test\n")
		}
	})
}

func TestConsoleHookForceFlushesOversizedPartialLine(t *testing.T) {
	withRedirectedStdout(t, func(passthrough *bufio.Reader) {
		st := store.NewConsoleStore(10)
		bus := eventbus.New()
		hook := NewConsoleHook(st, bus, clock.System{})
		if err := hook.Install(); err != nil {
			t.Fatalf("Install: %v", err)
		}

		big := make([]byte, maxPartialLineBytes+100)
		for i := range big {
			big[i] = 'x'
		}
		os.Stdout.Write(big) //nolint:errcheck

		time.Sleep(50 * time.Millisecond)
		hook.Uninstall()

		if st.Count() == 0 {
			t.Fatalf("expected at least one force-flushed entry")
		}
	})
}

func TestConsoleHookUninstallRestoresStreams(t *testing.T) {
	withRedirectedStdout(t, func(passthrough *bufio.Reader) {
		saved := os.Stdout
		st := store.NewConsoleStore(10)
		bus := eventbus.New()
		hook := NewConsoleHook(st, bus, clock.System{})
		if err := hook.Install(); err != nil {
			t.Fatalf("Install: %v", err)
		}
		if os.Stdout == saved {
			t.Fatalf("Install should have swapped os.Stdout")
		}
		hook.Uninstall()
		if os.Stdout != saved {
			t.Fatalf("Uninstall should restore the original os.Stdout")
		}
	})
}
