package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "login <email>",
		Short:   "Sign in and store the access token in the profile",
		GroupID: "system",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			password, err := c.password()
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("password required")
			}
			res, err := c.api.Login(cmd.Context(), email, password)
			if err != nil {
				if apiclient.IsUnauthorized(err) {
					return errors.New("invalid email or password")
				}
				return errors.New(listctl.UserMessage(err))
			}

			name := c.profileName
			if name == "" {
				name = c.profiles.Active
			}
			if name == "" {
				name = "default"
			}
			p := c.profiles.Profiles[name]
			if c.apiFlag != "" || p.API == "" {
				p.API = c.api.BaseURL()
			}
			p.Token = res.AccessToken
			p.Email = email
			c.profiles.Profiles[name] = p
			if c.profiles.Active == "" {
				c.profiles.Active = name
			}
			if err := saveProfiles(c.profiles); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Signed in as %s (%s) on profile %q.\n", res.User.Name, res.User.Role, name)
			return nil
		},
	}
}

// password prompts without echo on a terminal and reads a line otherwise.
func (c *cli) password() (string, error) {
	if c.isTerminal() {
		fmt.Fprint(c.stdout, "Password: ")
		pw, err := c.readPassword()
		fmt.Fprintln(c.stdout)
		return pw, err
	}
	return c.readLine()
}

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Manage named backend profiles",
		GroupID: "system",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <api-url>",
			Short: "Add or update a profile",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p := c.profiles.Profiles[args[0]]
				p.API = args[1]
				c.profiles.Profiles[args[0]] = p
				if c.profiles.Active == "" {
					c.profiles.Active = args[0]
				}
				return saveProfiles(c.profiles)
			},
		},
		&cobra.Command{
			Use:   "use <name>",
			Short: "Set the active profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, ok := c.profiles.Profiles[args[0]]; !ok {
					return fmt.Errorf("profile %q not found", args[0])
				}
				c.profiles.Active = args[0]
				return saveProfiles(c.profiles)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List profiles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, name := range sortedKeys(c.profiles.Profiles) {
					marker := " "
					if name == c.profiles.Active {
						marker = "*"
					}
					p := c.profiles.Profiles[name]
					signedIn := ""
					if p.Token != "" {
						signedIn = " (" + p.Email + ")"
					}
					fmt.Fprintf(c.stdout, "%s %s\t%s%s\n", marker, name, p.API, signedIn)
				}
				return nil
			},
		},
	)
	return cmd
}
