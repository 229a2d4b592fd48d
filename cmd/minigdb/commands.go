package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antRainZ/minigdb/debugger"
	"github.com/spf13/cobra"
)

func launchTarget(path string, args []string) (*debugger.Debugger, error) {
	dbg, err := debugger.Launch(path, args)
	if err != nil {
		return nil, fmt.Errorf("launching %s: %w", path, err)
	}
	return dbg, nil
}

// setBreakpoint parses a break target of the form "file:line",
// "0xADDR", or a bare function name, and places a breakpoint there.
func setBreakpoint(dbg *debugger.Debugger, loc string) error {
	if strings.HasPrefix(loc, "0x") {
		addr, err := strconv.ParseUint(loc[2:], 16, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", loc, err)
		}
		_, err = dbg.BreakAtAddress(addr)
		return err
	}
	if idx := strings.LastIndex(loc, ":"); idx > 0 {
		line, err := strconv.Atoi(loc[idx+1:])
		if err == nil {
			_, err := dbg.BreakAtLine(loc[:idx], line)
			return err
		}
	}
	_, err := dbg.BreakAtFunction(loc)
	return err
}

func newBreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "break <binary> <location>",
		Short: "launch binary and plant a breakpoint at location (file:line, 0xADDR, or function)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			if err := setBreakpoint(dbg, args[1]); err != nil {
				return err
			}
			ev, err := dbg.Continue()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

func newContCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cont <binary>",
		Short: "launch binary and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			ev, err := dbg.Continue()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <binary>",
		Short: "launch binary and source-step in, descending into calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			ev, err := dbg.StepIn()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <binary>",
		Short: "launch binary and source-step over, skipping into calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			ev, err := dbg.StepOver()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <binary>",
		Short: "launch binary and run until the current function returns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			ev, err := dbg.StepOut()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

func newStepiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stepi <binary>",
		Short: "launch binary and execute exactly one machine instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			ev, err := dbg.StepInstruction()
			if err != nil {
				return err
			}
			fmt.Println(ev)
			return nil
		},
	}
}

// newRegisterCmd implements "register <binary> [dump | read NAME |
// write NAME 0xVAL]", defaulting to dump when no sub-verb is given.
func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <binary> [dump | read NAME | write NAME 0xVAL]",
		Short: "launch binary, stop at entry, and dump, read, or write a register",
		Args:  cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			return runRegisterVerb(dbg, args[1:])
		},
	}
}

// runRegisterVerb dispatches a register sub-verb against an already
// launched debugger: dump (the default), read NAME, or write NAME 0xVAL.
func runRegisterVerb(dbg *debugger.Debugger, rest []string) error {
	verb := "dump"
	if len(rest) > 0 {
		verb = rest[0]
	}
	switch verb {
	case "dump":
		out, err := dbg.FormatRegisters()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	case "read":
		if len(rest) < 2 {
			return fmt.Errorf("register read requires a register name")
		}
		v, err := dbg.Register(rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s = 0x%016x\n", rest[1], v)
		return nil
	case "write":
		if len(rest) < 3 {
			return fmt.Errorf("register write requires a register name and a value")
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(rest[2], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", rest[2], err)
		}
		return dbg.SetRegister(rest[1], v)
	default:
		return fmt.Errorf("unknown register verb %q", verb)
	}
}

// newMemoryCmd implements "memory <binary> read <0xADDR> | write <0xADDR>
// <0xVAL>".
func newMemoryCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "memory <binary> (read <0xADDR> | write <0xADDR> <0xVAL>)",
		Short: "launch binary, stop at entry, and read or write memory at an address",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			return runMemoryVerb(dbg, args[1], args[2:], length)
		},
	}
	cmd.Flags().IntVar(&length, "length", 32, "number of bytes to dump when reading")
	return cmd
}

func runMemoryVerb(dbg *debugger.Debugger, verb string, rest []string, length int) error {
	switch verb {
	case "read":
		if len(rest) < 1 {
			return fmt.Errorf("memory read requires an address")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(rest[0], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", rest[0], err)
		}
		data, err := dbg.ReadMemory(addr, length)
		if err != nil {
			return err
		}
		fmt.Printf("%#x: % x\n", addr, data)
		return nil
	case "write":
		if len(rest) < 2 {
			return fmt.Errorf("memory write requires an address and a value")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(rest[0], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", rest[0], err)
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(rest[1], "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", rest[1], err)
		}
		buf := make([]byte, 8)
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
		return dbg.WriteMemory(addr, buf)
	default:
		return fmt.Errorf("unknown memory verb %q", verb)
	}
}

func newVariablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variables <binary> <location>",
		Short: "launch binary, break at location, and print in-scope variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			if err := setBreakpoint(dbg, args[1]); err != nil {
				return err
			}
			if _, err := dbg.Continue(); err != nil {
				return err
			}
			vars, err := dbg.Variables()
			if err != nil {
				return err
			}
			for _, v := range vars {
				fmt.Println(debugger.FormatVariable(v, nil))
			}
			return nil
		},
	}
}

func newBacktraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backtrace <binary> <location>",
		Short: "launch binary, break at location, and print the call stack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			if err := setBreakpoint(dbg, args[1]); err != nil {
				return err
			}
			if _, err := dbg.Continue(); err != nil {
				return err
			}
			frames, err := dbg.Backtrace()
			if err != nil {
				return err
			}
			for i, f := range frames {
				fmt.Printf("#%-2d %#016x in %s at %s:%d\n", i, f.PC, f.Function, f.File, f.Line)
			}
			return nil
		},
	}
}

func newSymbolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbol <binary> <name>",
		Short: "look up a symbol in the binary's ELF symbol table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], nil)
			if err != nil {
				return err
			}
			defer dbg.Close()
			syms, err := dbg.LookupSymbol(args[1])
			if err != nil {
				return err
			}
			for _, s := range syms {
				fmt.Printf("%#016x %-6d %s\n", dbg.RuntimeAddress(s), s.Size, s.Name)
			}
			return nil
		},
	}
}
