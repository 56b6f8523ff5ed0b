package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*spinner, *bytes.Buffer) {
	s := newSpinner(ctx, msg)
	var buf bytes.Buffer
	s.w = &buf
	return s, &buf
}

func TestSpinnerStop(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Importing...")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stop()

	if s.cancelled() {
		t.Error("stop should not count as cancellation")
	}
	if !strings.Contains(buf.String(), "Importing...") {
		t.Errorf("output %q should contain the message", buf.String())
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Rendering...")
	s.start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing...")
	s.start()
	s.stop()
	s.stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Never shown")
	s.stop()
}

func TestSpinnerUpdate(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Importing 0/2")
	s.start()
	s.update("Importing %d/%d", 2, 2)
	time.Sleep(150 * time.Millisecond)
	s.stop()

	if !strings.Contains(buf.String(), "Importing 2/2") {
		t.Errorf("output %q should contain the updated message", buf.String())
	}
}
