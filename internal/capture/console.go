package capture

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

// maxPartialLineBytes is the force-flush threshold for a write with no
// terminator (spec.md §4.4).
const maxPartialLineBytes = 64 * 1024

// ConsoleHook redirects os.Stdout and os.Stderr into captured ConsoleEntry
// values while still letting the original bytes reach the real terminal.
//
// Grounded on brennhill-gasoline-mcp-ai-devtools's
// cmd/dev-console/bridge_io_isolation_{unix,windows}.go: save the original
// stream, substitute a new one, restore on teardown. That file uses
// syscall.Dup2 because it must also keep subprocess fd inheritance working;
// SharpInspect has no subprocess to protect, so the portable form of the
// same idea — reassigning the os.Stdout/os.Stderr package variables to a
// pipe, which works identically on every GOOS — is used here instead of
// platform-specific fd surgery (see DESIGN.md).
//
// Recursion avoidance: internal/inspectlog captures the pristine os.Stderr
// at package load time, before Install can ever run, and always logs there
// — so SharpInspect's own diagnostic output structurally never loops back
// through this hook, without needing call-stack introspection.
type ConsoleHook struct {
	Store *store.ConsoleStore
	Bus   *eventbus.Bus
	Clock clock.Clock

	mu           sync.Mutex
	installed    bool
	origStdout   *os.File
	origStderr   *os.File
	pipeWStdout  *os.File
	pipeWStderr  *os.File
	wg           sync.WaitGroup
}

// NewConsoleHook constructs an uninstalled hook.
func NewConsoleHook(st *store.ConsoleStore, bus *eventbus.Bus, c clock.Clock) *ConsoleHook {
	if c == nil {
		c = clock.System{}
	}
	return &ConsoleHook{Store: st, Bus: bus, Clock: c}
}

// Install substitutes os.Stdout and os.Stderr with pipes tee'd into the
// console store, and into the real original streams. If pipe creation
// fails, the original streams are left untouched (spec.md §4.4's
// "fails gracefully" requirement) and an error is returned.
func (h *ConsoleHook) Install() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return nil
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return err
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		rOut.Close()
		wOut.Close()
		return err
	}

	h.origStdout = os.Stdout
	h.origStderr = os.Stderr
	h.pipeWStdout = wOut
	h.pipeWStderr = wErr

	os.Stdout = wOut
	os.Stderr = wErr
	h.installed = true

	h.wg.Add(2)
	go h.pump(rOut, h.origStdout, model.LevelInformation, "stdout", &h.wg)
	go h.pump(rErr, h.origStderr, model.LevelError, "stderr", &h.wg)

	return nil
}

// Uninstall restores the original os.Stdout/os.Stderr and waits for the
// capture goroutines to drain and exit. Safe to call on an uninstalled or
// already-uninstalled hook.
func (h *ConsoleHook) Uninstall() {
	h.mu.Lock()
	if !h.installed {
		h.mu.Unlock()
		return
	}
	os.Stdout = h.origStdout
	os.Stderr = h.origStderr
	h.pipeWStdout.Close()
	h.pipeWStderr.Close()
	h.installed = false
	h.mu.Unlock()

	h.wg.Wait()
}

// pump reads from r line-by-line, appending one ConsoleEntry per line (or
// per force-flush of a too-long partial line), and tees every byte read to
// original unchanged so the real terminal still shows it.
func (h *ConsoleHook) pump(r *os.File, original *os.File, level model.Level, category string, wg *sync.WaitGroup) {
	defer wg.Done()
	defer r.Close()

	reader := bufio.NewReaderSize(r, maxPartialLineBytes)
	var partial []byte

	flush := func(line []byte) {
		if len(line) == 0 {
			return
		}
		entry := model.ConsoleEntry{
			Timestamp: h.Clock.Now(),
			Message:   string(line),
			Level:     level,
			Category:  category,
		}
		if h.Store != nil {
			entry.Id = h.Store.Append(entry)
		}
		if h.Bus != nil {
			eventbus.PublishAsync(h.Bus, model.ConsoleEntryEvent{Entry: &entry})
		}
	}

	for {
		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			if original != nil {
				original.Write(chunk) //nolint:errcheck
			}
			partial = append(partial, chunk...)
			if len(partial) > 0 && partial[len(partial)-1] == '\n' {
				flush(trimNewline(partial))
				partial = nil
			} else if len(partial) >= maxPartialLineBytes {
				flush(partial)
				partial = nil
			}
		}
		if err != nil {
			if err == io.EOF {
				flush(partial)
				return
			}
			if err == bufio.ErrBufferFull {
				// ReadSlice couldn't find '\n' within the buffer: force-flush
				// what we have so far and keep reading the rest of the line.
				continue
			}
			flush(partial)
			return
		}
	}
}

func trimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}
