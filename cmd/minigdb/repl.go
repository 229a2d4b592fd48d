package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antRainZ/minigdb/debugger"
	"github.com/chzyer/readline"
)

// runREPL drives an interactive session against one already-launched
// debugger, reading commands with github.com/chzyer/readline the way the
// teacher's own interactive tools line-edit their input.
func runREPL(dbg *debugger.Debugger) error {
	rl, err := readline.New("(minigdb) ")
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		err = dispatch(dbg, fields[0], fields[1:])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Println(err)
		}
	}
}

func dispatch(dbg *debugger.Debugger, verb string, args []string) error {
	switch verb {
	case "break", "b":
		if len(args) != 1 {
			return fmt.Errorf("usage: break <location>")
		}
		return setBreakpoint(dbg, args[0])
	case "cont", "c":
		return printEvent(dbg.Continue())
	case "step", "s":
		return printEvent(dbg.StepIn())
	case "next", "n":
		return printEvent(dbg.StepOver())
	case "finish", "fin":
		return printEvent(dbg.StepOut())
	case "stepi", "si":
		return printEvent(dbg.StepInstruction())
	case "register", "reg":
		return runRegisterVerb(dbg, args)
	case "memory", "mem", "x":
		return printMemory(dbg, args)
	case "variables", "vars":
		vars, err := dbg.Variables()
		if err != nil {
			return err
		}
		for _, v := range vars {
			fmt.Println(debugger.FormatVariable(v, nil))
		}
		return nil
	case "backtrace", "bt":
		frames, err := dbg.Backtrace()
		if err != nil {
			return err
		}
		for i, f := range frames {
			fmt.Printf("#%-2d %#016x in %s at %s:%d\n", i, f.PC, f.Function, f.File, f.Line)
		}
		return nil
	case "symbol", "sym":
		if len(args) != 1 {
			return fmt.Errorf("usage: symbol <name>")
		}
		syms, err := dbg.LookupSymbol(args[0])
		if err != nil {
			return err
		}
		for _, s := range syms {
			fmt.Printf("%#016x %-6d %s\n", dbg.RuntimeAddress(s), s.Size, s.Name)
		}
		return nil
	case "quit", "q", "exit":
		return io.EOF
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

func printEvent(ev debugger.StopEvent, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(ev)
	return nil
}

// printMemory implements the REPL's "memory read 0xADDR [length]" and
// "memory write 0xADDR 0xVAL" verbs.
func printMemory(dbg *debugger.Debugger, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: memory (read <0xADDR> [length] | write <0xADDR> <0xVAL>)")
	}
	switch args[0] {
	case "read":
		addr, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", args[1], err)
		}
		length := 32
		if len(args) > 2 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				length = n
			}
		}
		data, err := dbg.ReadMemory(addr, length)
		if err != nil {
			return err
		}
		fmt.Printf("%#x: % x\n", addr, data)
		return nil
	case "write":
		if len(args) < 3 {
			return fmt.Errorf("usage: memory write <0xADDR> <0xVAL>")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", args[1], err)
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(args[2], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", args[2], err)
		}
		buf := make([]byte, 8)
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
		return dbg.WriteMemory(addr, buf)
	default:
		return fmt.Errorf("unknown memory verb %q", args[0])
	}
}
