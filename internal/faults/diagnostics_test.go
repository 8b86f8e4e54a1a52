package faults

import (
	"errors"
	"runtime"
	"testing"
)

func TestFingerprintStable(t *testing.T) {
	p := ParsedError{Type: TypeDatabase, Name: "QueryError", Message: "constraint violated"}
	md := Metadata{}

	a := Fingerprint(p, "vote", md, "store.go:12")
	b := Fingerprint(p, "vote", md, "store.go:12")
	if a != b {
		t.Fatalf("identical inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	base := ParsedError{Type: TypeDatabase, Name: "QueryError", Message: "constraint violated"}
	ref := Fingerprint(base, "vote", Metadata{}, "")

	changedMsg := base
	changedMsg.Message = "deadlock detected"
	if Fingerprint(changedMsg, "vote", Metadata{}, "") == ref {
		t.Error("different messages share a fingerprint")
	}

	if Fingerprint(base, "undo", Metadata{}, "") == ref {
		t.Error("different contexts share a fingerprint")
	}

	if Fingerprint(base, "vote", Metadata{IsCritical: true}, "") == ref {
		t.Error("criticality does not affect the fingerprint")
	}
}

const sampleStack = `goroutine 1 [running]:
main.doWork(0x1)
	/app/main.go:42 +0x1a
main.main()
	/app/main.go:10 +0x2b
`

func TestParseStack(t *testing.T) {
	frames := ParseStack(sampleStack)
	if len(frames) != 2 {
		t.Fatalf("parsed %d frames, want 2", len(frames))
	}

	if frames[0].Function != "main.doWork" {
		t.Errorf("frame 0 function = %q, want main.doWork", frames[0].Function)
	}
	if frames[0].File != "/app/main.go" || frames[0].Line != 42 {
		t.Errorf("frame 0 location = %s:%d, want /app/main.go:42", frames[0].File, frames[0].Line)
	}
	if frames[1].Function != "main.main" || frames[1].Line != 10 {
		t.Errorf("frame 1 = %+v", frames[1])
	}
}

func TestParseStackKeepsUnmatchedLines(t *testing.T) {
	frames := ParseStack("goroutine 7 [select]:\n\tcreated by something odd\n")
	if len(frames) != 1 {
		t.Fatalf("parsed %d frames, want 1", len(frames))
	}
	if frames[0].Raw != "created by something odd" {
		t.Errorf("Raw = %q", frames[0].Raw)
	}
}

func TestParseStackEmpty(t *testing.T) {
	if frames := ParseStack(""); frames != nil {
		t.Errorf("ParseStack(\"\") = %v, want nil", frames)
	}
}

func TestParseStackRealTrace(t *testing.T) {
	buf := make([]byte, 1<<14)
	n := runtime.Stack(buf, false)

	frames := ParseStack(string(buf[:n]))
	if len(frames) == 0 {
		t.Fatal("no frames parsed from a live stack trace")
	}

	var located bool
	for _, f := range frames {
		if f.File != "" && f.Line > 0 {
			located = true
			break
		}
	}
	if !located {
		t.Error("no frame carried a file:line location")
	}
}

func TestBuildDiagnosticsLocation(t *testing.T) {
	p := ParsedError{Type: TypeRuntime, Message: "boom", Stack: sampleStack}
	d := buildDiagnostics(p, "vote", Metadata{}, nil)

	if d.Location != "/app/main.go:42" {
		t.Errorf("Location = %s, want /app/main.go:42", d.Location)
	}

	// Without a stack the context stands in for the location.
	d = buildDiagnostics(ParsedError{Type: TypeRuntime, Message: "boom"}, "vote", Metadata{}, nil)
	if d.Location != "vote" {
		t.Errorf("Location = %s, want vote", d.Location)
	}
}

func TestDebugHints(t *testing.T) {
	hints := debugHints(ParsedError{
		Type:  TypeNetwork,
		Cause: errors.New("socket closed"),
	}, Metadata{Request: map[string]any{"path": "/api/names"}})

	if len(hints) != 3 {
		t.Fatalf("got %d hints, want 3: %v", len(hints), hints)
	}
	if hints[0] != "caused by: socket closed" {
		t.Errorf("hints[0] = %q", hints[0])
	}
}

func TestCaptureEnvironment(t *testing.T) {
	snap := CaptureEnvironment(StaticEnv{IsOnline: false})

	if snap.OS != runtime.GOOS || snap.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", snap.OS, snap.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if snap.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if snap.Online {
		t.Error("Online = true, want the injected offline state")
	}
	if snap.PID <= 0 {
		t.Errorf("PID = %d", snap.PID)
	}
}
