package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetEnabled(false)
	})
	return &buf
}

func TestLogWritesWhenEnabled(t *testing.T) {
	buf := withBuffer(t)

	Log("loaded %d indicators", 3)
	LogTiming("filter", time.Millisecond)
	LogIf(false, "hidden")
	Dump("mode", "all")

	out := buf.String()
	for _, want := range []string{"[CV_DEBUG]", "loaded 3 indicators", "filter took 1ms", "mode: string = all"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("LogIf(false) should not write")
	}
}

func TestLogSilentWhenDisabled(t *testing.T) {
	buf := withBuffer(t)
	SetEnabled(false)

	Log("nothing")
	LogEnterExit("nothing")()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogFileDefault(t *testing.T) {
	t.Setenv("CV_DEBUG_FILE", "")
	if LogFile() != DefaultLogFile {
		t.Errorf("LogFile() = %q", LogFile())
	}
	t.Setenv("CV_DEBUG_FILE", "/tmp/x.log")
	if LogFile() != "/tmp/x.log" {
		t.Errorf("LogFile() = %q", LogFile())
	}
}
