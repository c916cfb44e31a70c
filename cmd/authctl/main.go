// authctl signs in to the auth API, keeps the session renewed and sends
// authenticated requests from the command line.
//
// Usage:
//
//	authctl login <username>   password from AUTHCTL_PASSWORD or stdin
//	authctl whoami             restore the saved session and print the user
//	authctl status             print the saved session without network calls
//	authctl get <path|url>     GET through the renewing transport
//	authctl watch              keep the session renewed until interrupted
//	authctl logout
//	authctl keygen             print a key for CREDSTORE_ENCRYPTION_KEY
//
// Configuration is read from the environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: authctl <command> [args]

commands:
  login <username>   sign in; password from AUTHCTL_PASSWORD or stdin
  whoami             restore the saved session and print the user
  status             print the saved session without network calls
  get <path|url>     send a GET request with the session token
  watch              keep the session renewed until interrupted
  logout             sign out and clear saved credentials
  keygen             print a new credential encryption key
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	if cmd == "keygen" {
		return keygen()
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	switch cmd {
	case "login":
		if len(rest) != 1 {
			return errUsage
		}
		return a.login(ctx, rest[0])
	case "whoami":
		return a.whoami(ctx)
	case "status":
		return a.status()
	case "get":
		if len(rest) != 1 {
			return errUsage
		}
		return a.get(ctx, rest[0])
	case "watch":
		return a.watch(ctx)
	case "logout":
		return a.logout(ctx)
	default:
		return errUsage
	}
}
