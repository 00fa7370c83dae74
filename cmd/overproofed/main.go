package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/roach88/overproofed/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if code := report(os.Stderr, err); code != cli.ExitSuccess {
		os.Exit(code)
	}
}

// report prints err to w unless a command already wrote it, and returns the
// process exit code.
func report(w io.Writer, err error) int {
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintln(w, err)
	}
	return cli.GetExitCode(err)
}

// run executes the root command with the given arguments.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
