// Command backofficectl drives the back-office resource lists from a
// terminal: list pages, run row actions and trigger maintenance jobs.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/resources/all"
)

const defaultAPI = "http://127.0.0.1:8000"

// cli carries the streams and per-invocation state shared by commands.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// isTerminal reports whether stdin is interactive.
	isTerminal func() bool
	// readPassword reads a secret without echo.
	readPassword func() (string, error)
	// newJobs overrides the queue helper constructor.
	newJobs func() *JobsCLI

	profileName string
	apiFlag     string
	jsonOutput  bool

	profiles ProfilesConfig
	profile  Profile
	api      *apiclient.Client
	registry *resources.Registry
	lines    *bufio.Reader
}

func newCLI() *cli {
	fd := int(os.Stdin.Fd())
	return &cli{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(fd) },
		readPassword: func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Operate the AR-guide back office from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.profileName, "profile", os.Getenv("BACKOFFICE_PROFILE"), "profile name from profiles.toml")
	root.PersistentFlags().StringVar(&c.apiFlag, "api", "", "backend API base URL (overrides the profile)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output as JSON")

	root.AddGroup(
		&cobra.Group{ID: "lists", Title: "Resource lists:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	root.AddCommand(
		newResourcesCmd(c),
		newListCmd(c),
		newActCmd(c),
		newLoginCmd(c),
		newProfileCmd(c),
		newJobsCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	_, profile, err := profiles.resolve(c.profileName)
	if err != nil {
		return err
	}
	c.profiles = profiles
	c.profile = profile

	base := c.apiFlag
	if base == "" {
		base = profile.API
	}
	if base == "" {
		base = defaultAPI
	}
	c.api = apiclient.New(apiclient.Options{
		BaseURL:   base,
		Token:     profile.Token,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		UserAgent: "backofficectl",
	})
	c.registry, err = all.Registry()
	if err != nil {
		return err
	}
	c.lines = bufio.NewReader(c.stdin)
	return nil
}

// deps builds resource dependencies that print notifications.
func (c *cli) deps(pageSize int) resources.Deps {
	return resources.Deps{
		API:      c.api,
		Logger:   slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		PageSize: pageSize,
		Notifier: listctl.NotifierFunc(func(_ context.Context, n listctl.Notification) {
			if n.Kind == listctl.KindSuccess {
				fmt.Fprintln(c.stdout, n.Message)
			}
		}),
	}
}

func (c *cli) binding(name string) (resources.Binding, error) {
	b, ok := c.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (try: %s)", name, strings.Join(c.registry.Names(), ", "))
	}
	return b, nil
}

// readLine reads one trimmed line from stdin.
func (c *cli) readLine() (string, error) {
	line, err := c.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func main() {
	c := newCLI()
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
