// File: cmd/fingerprint.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/fingerprint"
	"github.com/obscuraops/multipass/internal/injection"
)

func newFingerprintCmd() *cobra.Command {
	var (
		emitScript bool
		verify     bool
	)

	fingerprintCmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Generate a browser fingerprint",
		Long:  `Generates a coherent fingerprint from curated hardware and software profiles. With --script it also emits the spoof script that makes a browser present the fingerprint.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fp := fingerprint.Generate()

			if !emitScript {
				return printJSON(fp)
			}

			script := injection.Synthesize(fp, schemas.FullInjectionConfig())
			if verify {
				if _, err := injection.Verify(script); err != nil {
					return fmt.Errorf("script verification failed: %w", err)
				}
			}
			fmt.Print(script)
			return nil
		},
	}

	fingerprintCmd.Flags().BoolVar(&emitScript, "script", false, "emit the spoof script instead of the fingerprint")
	fingerprintCmd.Flags().BoolVar(&verify, "verify", false, "run the script through the embedded JS engine before emitting")
	return fingerprintCmd
}
