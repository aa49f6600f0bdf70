// File: cmd/session.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/config"
	"github.com/obscuraops/multipass/internal/observability"
	"github.com/obscuraops/multipass/internal/session"
)

func newSessionEngine() *session.Engine {
	return session.NewEngine(config.Get().Session.SensitiveCookieTokens, observability.GetLogger())
}

func newSessionCmd() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Clone and transfer sessions between identities",
	}
	sessionCmd.AddCommand(newSessionCloneCmd(), newSessionExportCmd(), newSessionImportCmd())
	return sessionCmd
}

func newSessionCloneCmd() *cobra.Command {
	var (
		includeSensitive bool
		includeSession   bool
		skipHistory      bool
		skipTabs         bool
		domainFilter     []string
		domainExclude    []string
	)

	cloneCmd := &cobra.Command{
		Use:   "clone <source-identity> <target-identity>",
		Short: "Clone a session from one identity to another",
		Long:  `Copies the source identity's session snapshot to the target identity under the configured policy. Sensitive cookies stay behind unless explicitly included, and the report shows exactly what crossed.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := newStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			source, err := s.GetSession(ctx, args[0])
			if err != nil {
				return err
			}

			opts := schemas.DefaultCloneOptions()
			opts.IncludeSensitiveCookies = includeSensitive
			opts.IncludeSessionStorage = includeSession
			opts.IncludeHistory = !skipHistory
			opts.IncludeTabs = !skipTabs
			opts.DomainFilter = domainFilter
			opts.DomainExclude = domainExclude

			cloned, result, err := newSessionEngine().Clone(source, args[1], opts)
			if err != nil {
				return err
			}
			if err := s.PutSession(ctx, cloned); err != nil {
				return err
			}

			fmt.Printf("Cloned session %s to identity %s\n", result.SessionID, result.TargetIdentityID)
			fmt.Printf("  cookies: %d cloned, %d withheld\n", result.CookiesCloned, result.CookiesSkipped)
			fmt.Printf("  local storage entries: %d\n", result.LocalStorageEntries)
			fmt.Printf("  history entries: %d, tabs: %d\n", result.HistoryEntries, result.TabsCloned)
			return nil
		},
	}

	cloneCmd.Flags().BoolVar(&includeSensitive, "include-sensitive", false, "carry auth tokens and other sensitive cookies")
	cloneCmd.Flags().BoolVar(&includeSession, "include-session-storage", false, "carry ephemeral session storage")
	cloneCmd.Flags().BoolVar(&skipHistory, "skip-history", false, "leave navigation history behind")
	cloneCmd.Flags().BoolVar(&skipTabs, "skip-tabs", false, "leave open tabs behind")
	cloneCmd.Flags().StringSliceVar(&domainFilter, "only-domains", nil, "only clone data for these domains")
	cloneCmd.Flags().StringSliceVar(&domainExclude, "exclude-domains", nil, "never clone data for these domains")
	return cloneCmd
}

func newSessionExportCmd() *cobra.Command {
	var output string

	exportCmd := &cobra.Command{
		Use:   "export <identity>",
		Short: "Export an identity's session to a transfer file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := newStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot, err := s.GetSession(ctx, args[0])
			if err != nil {
				return err
			}

			export, err := newSessionEngine().Export(snapshot)
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = os.Stdout.Write(payload)
				return err
			}
			if err := os.WriteFile(output, payload, 0o600); err != nil {
				return err
			}
			fmt.Printf("Exported session %s to %s (hash %s)\n", export.Session.ID, output, export.IntegrityHash)
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&output, "output", "o", "session.json", "output file, or - for stdout")
	return exportCmd
}

func newSessionImportCmd() *cobra.Command {
	var input string

	importCmd := &cobra.Command{
		Use:   "import <target-identity>",
		Short: "Import a session transfer file into an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			payload, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			var export schemas.SessionExport
			if err := json.Unmarshal(payload, &export); err != nil {
				return fmt.Errorf("invalid transfer file: %w", err)
			}

			imported, err := newSessionEngine().Import(export, args[0])
			if err != nil {
				return err
			}

			s, cleanup, err := newStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.PutSession(ctx, imported); err != nil {
				return err
			}
			fmt.Printf("Imported session %s into identity %s\n", imported.ID, args[0])
			return nil
		},
	}

	importCmd.Flags().StringVarP(&input, "input", "i", "session.json", "transfer file to import")
	return importCmd
}
