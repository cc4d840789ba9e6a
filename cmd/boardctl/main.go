package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/logging"
)

var Version = "dev"

type globals struct {
	server  string
	verbose bool
}

func main() {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Watch and edit the shared task board from a terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.server, "server", envOr("BOARD_SERVER", "http://localhost:3000"), "Board server base URL")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log connection details")

	rootCmd.AddCommand(watchCmd(g))
	rootCmd.AddCommand(addSectionCmd(g))
	rootCmd.AddCommand(addTaskCmd(g))
	rootCmd.AddCommand(toggleCmd(g))
	rootCmd.AddCommand(starCmd(g))
	rootCmd.AddCommand(rmTaskCmd(g))
	rootCmd.AddCommand(rmSectionCmd(g))
	rootCmd.AddCommand(translateCmd(g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *globals) logger() *zap.Logger {
	if !g.verbose {
		return zap.NewNop()
	}
	log, err := logging.New(true, "debug")
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// wsURL maps http(s)://host to ws(s)://host/ws.
func wsURL(server string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid --server: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid --server scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	return u.String(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
