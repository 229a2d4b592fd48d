package main

import (
	"errors"
	"io"
	"testing"
)

func TestDispatchQuit(t *testing.T) {
	err := dispatch(nil, "quit", nil)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("dispatch(quit) error = %v, want io.EOF", err)
	}
}

func TestDispatchQuitAliases(t *testing.T) {
	for _, verb := range []string{"q", "exit"} {
		if err := dispatch(nil, verb, nil); !errors.Is(err, io.EOF) {
			t.Errorf("dispatch(%q) error = %v, want io.EOF", verb, err)
		}
	}
}

func TestDispatchUnknownVerb(t *testing.T) {
	err := dispatch(nil, "frobnicate", nil)
	if err == nil {
		t.Fatalf("dispatch(frobnicate): want an error, got nil")
	}
}

func TestDispatchBreakWithoutArgs(t *testing.T) {
	// The usage check happens before dbg is touched.
	if err := dispatch(nil, "break", nil); err == nil {
		t.Fatalf("dispatch(break) with no args: want a usage error, got nil")
	}
}

func TestDispatchSymbolWithoutArgs(t *testing.T) {
	if err := dispatch(nil, "symbol", nil); err == nil {
		t.Fatalf("dispatch(symbol) with no args: want a usage error, got nil")
	}
}

func TestPrintMemoryRequiresAnAddress(t *testing.T) {
	if err := printMemory(nil, nil); err == nil {
		t.Fatalf("printMemory() with no args: want a usage error, got nil")
	}
}

func TestPrintMemoryRejectsBadAddress(t *testing.T) {
	if err := printMemory(nil, []string{"read", "0xZZZZ"}); err == nil {
		t.Fatalf("printMemory(0xZZZZ): want a parse error, got nil")
	}
}
