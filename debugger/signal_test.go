package debugger

import (
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestStopReasonString(t *testing.T) {
	cases := []struct {
		r    StopReason
		want string
	}{
		{StopBreakpoint, "breakpoint"},
		{StopSingleStep, "single-step"},
		{StopSegfault, "segfault"},
		{StopOtherSignal, "other_signal"},
		{StopExited, "exited"},
		{StopSignaled, "signaled"},
		{StopUnknown, "unknown"},
		{StopReason(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.r.String(); got != c.want {
			t.Errorf("StopReason(%d).String() = %q, want %q", c.r, got, c.want)
		}
	}
}

func TestStopEventStringExited(t *testing.T) {
	ev := StopEvent{Reason: StopExited, ExitCode: 2}
	got := ev.String()
	if !strings.Contains(got, "exited") || !strings.Contains(got, "2") {
		t.Fatalf("StopEvent.String() = %q, want it to mention exited and code 2", got)
	}
}

func TestStopEventStringBreakpoint(t *testing.T) {
	ev := StopEvent{Reason: StopBreakpoint, PC: 0x4000}
	got := ev.String()
	if !strings.Contains(got, "breakpoint") || !strings.Contains(got, "0x4000") {
		t.Fatalf("StopEvent.String() = %q, want it to mention breakpoint and the PC", got)
	}
}

func TestStopEventStringSignaled(t *testing.T) {
	ev := StopEvent{Reason: StopSignaled, Signal: unix.SIGKILL}
	got := ev.String()
	if !strings.Contains(got, "killed") {
		t.Fatalf("StopEvent.String() = %q, want it to mention killed", got)
	}
}

func TestStopEventStringSegfault(t *testing.T) {
	ev := StopEvent{Reason: StopSegfault, PC: 0x4000, SigCode: 1}
	got := ev.String()
	if !strings.Contains(got, "segfault") || !strings.Contains(got, "0x4000") {
		t.Fatalf("StopEvent.String() = %q, want it to mention segfault and the PC", got)
	}
}

func TestClassifyNonTrapSignalSegfault(t *testing.T) {
	ev := classifyNonTrapSignal(unix.SIGSEGV, 2 /* SEGV_ACCERR */, 0x4000)
	if ev.Reason != StopSegfault {
		t.Fatalf("classifyNonTrapSignal(SIGSEGV) Reason = %v, want StopSegfault", ev.Reason)
	}
	if ev.SigCode != 2 {
		t.Fatalf("classifyNonTrapSignal(SIGSEGV) SigCode = %d, want 2", ev.SigCode)
	}
	if ev.PC != 0x4000 {
		t.Fatalf("classifyNonTrapSignal(SIGSEGV) PC = %#x, want 0x4000", ev.PC)
	}
}

func TestClassifyNonTrapSignalOther(t *testing.T) {
	ev := classifyNonTrapSignal(unix.SIGABRT, 0, 0x5000)
	if ev.Reason != StopOtherSignal {
		t.Fatalf("classifyNonTrapSignal(SIGABRT) Reason = %v, want StopOtherSignal", ev.Reason)
	}
	if ev.Signal != unix.SIGABRT {
		t.Fatalf("classifyNonTrapSignal(SIGABRT) Signal = %v, want SIGABRT", ev.Signal)
	}
}

func TestStopEventStringOtherSignal(t *testing.T) {
	ev := StopEvent{Reason: StopOtherSignal, Signal: unix.SIGABRT, PC: 0x5000}
	got := ev.String()
	if !strings.Contains(got, "other_signal") || !strings.Contains(got, "0x5000") {
		t.Fatalf("StopEvent.String() = %q, want it to mention other_signal and the PC", got)
	}
}
