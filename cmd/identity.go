// File: cmd/identity.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obscuraops/multipass/api/schemas"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newIdentityCmd() *cobra.Command {
	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage browsing identities",
	}
	identityCmd.AddCommand(
		newIdentityCreateCmd(),
		newIdentityListCmd(),
		newIdentityShowCmd(),
		newIdentityRotateCmd(),
		newIdentityDestroyCmd(),
	)
	return identityCmd
}

func newIdentityCreateCmd() *cobra.Command {
	var (
		description string
		proxyType   string
		proxyHost   string
		proxyPort   uint16
	)

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new identity with a fresh fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, cleanup, err := newIdentityManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := manager.EnsurePrime(ctx); err != nil {
				return err
			}

			var proxy *schemas.ProxyConfig
			if proxyHost != "" {
				proxy = &schemas.ProxyConfig{
					Enabled:   true,
					ProxyType: proxyType,
					Host:      proxyHost,
					Port:      proxyPort,
				}
			}

			created, err := manager.Create(ctx, args[0], description, proxy)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}

	createCmd.Flags().StringVarP(&description, "description", "d", "", "identity description")
	createCmd.Flags().StringVar(&proxyType, "proxy-type", "http", "proxy type (http, socks5, tor)")
	createCmd.Flags().StringVar(&proxyHost, "proxy-host", "", "proxy host; empty disables the proxy")
	createCmd.Flags().Uint16Var(&proxyPort, "proxy-port", 0, "proxy port")
	return createCmd
}

func newIdentityListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, cleanup, err := newIdentityManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			identities, err := manager.List(ctx)
			if err != nil {
				return err
			}
			for _, i := range identities {
				fmt.Printf("%-36s  %-12s  %-9s  %s\n", i.ID, i.Name, i.Status, i.Fingerprint.ID)
			}
			return nil
		},
	}
}

func newIdentityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, cleanup, err := newIdentityManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			got, err := manager.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(got)
		},
	}
}

func newIdentityRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <id>",
		Short: "Replace an identity's fingerprint and wipe its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, cleanup, err := newIdentityManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rotated, err := manager.RotateFingerprint(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Identity %s now presents fingerprint %s\n", rotated.ID, rotated.Fingerprint.ID)
			return nil
		},
	}
}

func newIdentityDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <id>",
		Short: "Irreversibly destroy an identity and purge its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, cleanup, err := newIdentityManager(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := manager.Destroy(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Identity %s destroyed\n", args[0])
			return nil
		},
	}
}
