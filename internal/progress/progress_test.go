package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestRenderShowsPercentageAndCounts(t *testing.T) {
	var buf bytes.Buffer
	bar := NewWithWriter(&buf, 10)

	bar.Add(5)
	bar.Render()

	out := buf.String()
	if !strings.Contains(out, "(5/10)") {
		t.Errorf("render output %q missing counts", out)
	}
	if !strings.Contains(out, "50%") {
		t.Errorf("render output %q missing percentage", out)
	}
}

func TestConcurrentAddsSumExactly(t *testing.T) {
	var buf bytes.Buffer
	bar := NewWithWriter(&buf, 100*50)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bar.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := bar.Current(); got != 5000 {
		t.Errorf("counter = %d after concurrent adds, want 5000", got)
	}
}

func TestRenderClampsOvershoot(t *testing.T) {
	var buf bytes.Buffer
	bar := NewWithWriter(&buf, 10)

	bar.Add(15)
	bar.Render()

	if !strings.Contains(buf.String(), "(15/10)") {
		t.Errorf("render output %q should report raw counts", buf.String())
	}
}

func TestZeroTotalDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	bar := NewWithWriter(&buf, 0)

	bar.Add(1)
	bar.Finish()
}
