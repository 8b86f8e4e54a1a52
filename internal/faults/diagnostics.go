package faults

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// EnvironmentSnapshot captures the host state at format time.
type EnvironmentSnapshot struct {
	Hostname     string `json:"hostname"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	PID          int    `json:"pid"`
	Online       bool   `json:"online"`
	Timezone     string `json:"timezone"`
	UptimeMS     int64  `json:"uptime_ms"`
}

var processStart = time.Now()

// CaptureEnvironment builds a snapshot of the current process environment.
func CaptureEnvironment(env Env) EnvironmentSnapshot {
	hostname, _ := os.Hostname()
	tz, _ := time.Now().Zone()

	online := true
	if env != nil {
		online = env.Online()
	}

	return EnvironmentSnapshot{
		Hostname:     hostname,
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		PID:          os.Getpid(),
		Online:       online,
		Timezone:     tz,
		UptimeMS:     time.Since(processStart).Milliseconds(),
	}
}

// StackFrame is one parsed frame of a goroutine stack trace. Frames that do
// not match the expected layout keep the raw line instead.
type StackFrame struct {
	Function string `json:"function,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// Matches the source-location line of a runtime stack trace,
// e.g. "\t/src/app/main.go:42 +0x1a".
var stackFileRe = regexp.MustCompile(`^\t(.+\.go):(\d+)(?:\s+\+0x[0-9a-f]+)?$`)

// ParseStack extracts frames from a runtime.Stack-formatted trace. Function
// lines precede their source-location lines; unmatched indented lines are
// preserved raw so nothing is silently dropped.
func ParseStack(stack string) []StackFrame {
	if stack == "" {
		return nil
	}

	var frames []StackFrame
	var lastFunc string

	for _, line := range strings.Split(stack, "\n") {
		if line == "" || strings.HasPrefix(line, "goroutine ") {
			continue
		}

		if m := stackFileRe.FindStringSubmatch(line); m != nil {
			num, _ := strconv.Atoi(m[2])
			frames = append(frames, StackFrame{
				Function: lastFunc,
				File:     m[1],
				Line:     num,
			})
			lastFunc = ""
			continue
		}

		if strings.HasPrefix(line, "\t") {
			frames = append(frames, StackFrame{Raw: strings.TrimSpace(line)})
			continue
		}

		// Function line, e.g. "main.run(0x2, {0x0, 0x0})".
		lastFunc = strings.TrimSpace(line)
		if i := strings.IndexByte(lastFunc, '('); i > 0 {
			lastFunc = lastFunc[:i]
		}
	}

	return frames
}

// Diagnostics is the debugging payload attached to a formatted error.
// It is reserved for logs and telemetry, never shown to end users.
type Diagnostics struct {
	Fingerprint string              `json:"fingerprint"`
	Location    string              `json:"location,omitempty"`
	Environment EnvironmentSnapshot `json:"environment"`
	Frames      []StackFrame        `json:"frames,omitempty"`
	Hints       []string            `json:"hints,omitempty"`
}

// fingerprintInput is the canonical serialization hashed into a fingerprint.
// Field order is fixed by the struct, so identical inputs always produce
// identical JSON and therefore identical fingerprints.
type fingerprintInput struct {
	Type            ErrType `json:"type"`
	Name            string  `json:"name"`
	Message         string  `json:"message"`
	Context         string  `json:"context"`
	Critical        bool    `json:"critical"`
	AffectsUserData bool    `json:"affects_user_data"`
	Location        string  `json:"location"`
}

// Fingerprint computes a stable hash for grouping identical error
// occurrences across reports.
func Fingerprint(p ParsedError, context string, md Metadata, location string) string {
	in := fingerprintInput{
		Type:            p.Type,
		Name:            p.Name,
		Message:         p.Message,
		Context:         context,
		Critical:        md.IsCritical,
		AffectsUserData: md.AffectsUserData,
		Location:        location,
	}

	data, err := json.Marshal(in)
	if err != nil {
		data = []byte(fmt.Sprintf("%s|%s|%s|%s", p.Type, p.Name, p.Message, context))
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// debugHints derives quick triage pointers from the parsed error.
func debugHints(p ParsedError, md Metadata) []string {
	var hints []string

	if p.Cause != nil {
		hints = append(hints, fmt.Sprintf("caused by: %v", p.Cause))
	}
	if len(md.Request) > 0 {
		hints = append(hints, "request metadata attached")
	}

	switch p.Type {
	case TypeNetwork:
		hints = append(hints, "check connectivity and upstream availability")
	case TypeAuth:
		hints = append(hints, "check session validity and credentials")
	case TypeDatabase:
		hints = append(hints, "check database health and query shape")
	case TypeValidation:
		hints = append(hints, "check input payload against expected schema")
	case TypeRuntime:
		hints = append(hints, "likely a code defect; inspect the stack frames")
	}

	return hints
}

// buildDiagnostics assembles the full diagnostic payload.
func buildDiagnostics(p ParsedError, context string, md Metadata, env Env) Diagnostics {
	frames := ParseStack(p.Stack)

	location := context
	for _, f := range frames {
		if f.File != "" {
			location = fmt.Sprintf("%s:%d", f.File, f.Line)
			break
		}
	}

	return Diagnostics{
		Fingerprint: Fingerprint(p, context, md, location),
		Location:    location,
		Environment: CaptureEnvironment(env),
		Frames:      frames,
		Hints:       debugHints(p, md),
	}
}
