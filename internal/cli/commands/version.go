package commands

import (
	"fmt"
	"runtime"

	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the karmatoken build together with the fixed token rules it
enforces: the scale tax rates are expressed against and the divisor of the
max tx and max wallet floor.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContextWithoutStore(cmd).Renderer
			info := output.VersionInfo{
				Version:           version,
				Commit:            commit,
				BuildDate:         buildDate,
				GoVersion:         runtime.Version(),
				Platform:          runtime.GOOS + "/" + runtime.GOARCH,
				TaxDenominator:    core.TaxDenominator,
				LimitFloorDivisor: core.LimitFloorDivisor,
			}
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}

			r.Println(fmt.Sprintf("karmatoken v%s", info.Version))
			r.Muted(fmt.Sprintf("commit %s, built %s, %s %s", info.Commit, info.BuildDate, info.GoVersion, info.Platform))
			r.Println()
			r.KeyValues([][2]string{
				{"Tax rates", fmt.Sprintf("per %d", info.TaxDenominator)},
				{"Limit floor", fmt.Sprintf("total supply / %d", info.LimitFloorDivisor)},
			})
			return nil
		},
	}
}
