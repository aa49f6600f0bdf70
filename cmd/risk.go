// File: cmd/risk.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/config"
	"github.com/obscuraops/multipass/internal/observability"
	"github.com/obscuraops/multipass/internal/privacy"
)

func newRiskCmd() *cobra.Command {
	riskCmd := &cobra.Command{
		Use:   "risk",
		Short: "Assess destination risk",
	}
	riskCmd.AddCommand(newRiskAssessCmd())
	return riskCmd
}

func newRiskAssessCmd() *cobra.Command {
	var asJSON bool

	assessCmd := &cobra.Command{
		Use:   "assess <domain>...",
		Short: "Score one or more domains and recommend a protection level",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := privacy.NewEngine(config.Get().Privacy.Policy, observability.GetLogger())

			for _, domain := range args {
				assessment, err := engine.Assess(domain)
				if err != nil {
					return err
				}
				if asJSON {
					if err := printJSON(assessment); err != nil {
						return err
					}
					continue
				}
				fmt.Printf("%-30s  score %3d  %-12s  recommends %s (confidence %.2f)\n",
					assessment.Domain,
					assessment.RiskScore,
					assessment.Category,
					assessment.RecommendedOpsec,
					assessment.Confidence,
				)
				for _, factor := range assessment.RiskFactors {
					fmt.Printf("  - %s: %s\n", factor.Name, factor.Description)
				}
			}
			return nil
		},
	}

	assessCmd.Flags().BoolVar(&asJSON, "json", false, "emit full assessments as JSON")
	return assessCmd
}

func newOpsecCmd() *cobra.Command {
	opsecCmd := &cobra.Command{
		Use:   "opsec",
		Short: "Inspect protection levels",
	}
	opsecCmd.AddCommand(newOpsecShowCmd(), newOpsecSetCmd(), newOpsecLevelsCmd())
	return opsecCmd
}

func newOpsecShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [level]",
		Short: "Show the protections a level enables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.Get().Privacy.DefaultLevel
			if len(args) == 1 {
				name = args[0]
			}
			level, err := schemas.ParseOpsecLevel(name)
			if err != nil {
				return err
			}

			settings := privacy.SettingsForLevel(level)
			fmt.Printf("%s: %s\n", level, level.Description())
			fmt.Printf("Active protections: %d\n", privacy.ActiveProtectionCount(settings))
			return printJSON(settings)
		},
	}
}

func newOpsecSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <level>",
		Short: "Set the default protection level",
		Long: "Set the default protection level and persist it to the config file. " +
			"This is the only way to lower a level once a session escalated it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := schemas.ParseOpsecLevel(args[0])
			if err != nil {
				return err
			}

			v := viper.GetViper()
			v.Set("privacy.default_level", level.String())
			if err := v.WriteConfig(); err != nil {
				// No config file yet, create one in the working directory.
				if err := v.WriteConfigAs("config.yaml"); err != nil {
					return fmt.Errorf("persisting default level: %w", err)
				}
			}

			fmt.Printf("Default protection level set to %s\n", level)
			return nil
		},
	}
}

func newOpsecLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List all protection levels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, level := range []schemas.OpsecLevel{
				schemas.OpsecMinimal,
				schemas.OpsecStandard,
				schemas.OpsecEnhanced,
				schemas.OpsecMaximum,
				schemas.OpsecParanoid,
			} {
				count := privacy.ActiveProtectionCount(privacy.SettingsForLevel(level))
				fmt.Printf("%-9s  %2d protections  %s\n", level, count, level.Description())
			}
		},
	}
}
