// Command minigdb is a command-line front end for the debugger package: a
// cobra command tree covering one-shot invocations of each CLI surface
// verb, plus an interactive readline-driven REPL for working a single
// session through several commands in a row.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("minigdb: ")

	root := &cobra.Command{
		Use:   "minigdb <binary> [args...]",
		Short: "a native ELF/DWARF source-level debugger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbg, err := launchTarget(args[0], args[1:])
			if err != nil {
				return err
			}
			defer dbg.Close()
			return runREPL(dbg)
		},
	}
	root.AddCommand(
		newBreakCmd(),
		newContCmd(),
		newStepCmd(),
		newNextCmd(),
		newFinishCmd(),
		newRegisterCmd(),
		newMemoryCmd(),
		newVariablesCmd(),
		newBacktraceCmd(),
		newSymbolCmd(),
		newStepiCmd(),
	)

	if err := root.Execute(); err != nil {
		exitf("%v\n", err)
	}
}
