// Command certmail renders certificates and emails them to participants,
// either from a CSV roster or through the HTTP API.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-certmail/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	// .env never overrides variables already set in the process.
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}

	env := DefaultEnv()
	os.Exit(execute(env, os.Args[1:]))
}

// execute runs the command line and maps the outcome to an exit code.
func execute(env *Environment, args []string) int {
	root := newRootCmd(env)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, hintFor(err, env))
	return exitCodeFor(err)
}
