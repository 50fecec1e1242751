// ABOUTME: Entry point for the partycollage CLI
// ABOUTME: Party sessions and the shared media gallery from the command line

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Version is set at build time.
var version = "dev"

const banner = `
                  _                     _ _
 _ __   __ _ _ __| |_ _   _  ___ ___ | | | __ _  __ _  ___
| '_ \ / _' | '__| __| | | |/ __/ _ \| | |/ _' |/ _' |/ _ \
| |_) | (_| | |  | |_| |_| | (_| (_) | | | (_| | (_| |  __/
| .__/ \__,_|_|   \__|\__, |\___\___/|_|_|\__,_|\__, |\___|
|_|                   |___/                     |___/
`

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: partycollage <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init                            Import legacy media and seed the demo party")
	fmt.Fprintln(w, "  create [--days N|--no-expiry] NAME PASSWORD")
	fmt.Fprintln(w, "                                  Create a party and join it")
	fmt.Fprintln(w, "  login NAME PASSWORD             Join an existing party")
	fmt.Fprintln(w, "  logout                          Forget the current party")
	fmt.Fprintln(w, "  whoami                          Show the current user")
	fmt.Fprintln(w, "  parties                         List parties and their expiry")
	fmt.Fprintln(w, "  delete [NAME]                   Delete a party and its media (default: current)")
	fmt.Fprintln(w, "  countdown                       Time left for the current party")
	fmt.Fprintln(w, "  sweep                           Remove expired parties and their media")
	fmt.Fprintln(w, "  media list [--sort S] [--type T] [--tag TAG]...")
	fmt.Fprintln(w, "  media add --type photo|video (--url URL|--file PATH) [--tags a,b] [--mood M]")
	fmt.Fprintln(w, "  media rm ID")
	fmt.Fprintln(w, "  migrate                         Import the legacy media slot")
	fmt.Fprintln(w, "  stats                           Counts and activity metrics")
	fmt.Fprintln(w, "  version                         Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		os.Exit(1)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a single command. Command output goes to stdout, logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("no command given")
	}

	switch args[0] {
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	case "version":
		cyan := color.New(color.FgCyan)
		cyan.Fprint(stdout, banner)
		fmt.Fprintf(stdout, "    version: %s\n", version)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}

	a, err := openApp("", stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return cmd(ctx, a, args[1:], stdout)
}
