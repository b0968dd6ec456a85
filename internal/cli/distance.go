// internal/cli/distance.go

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stelios-avg/locom/internal/domain/geo"
	geoService "github.com/stelios-avg/locom/internal/service/geo"
)

var distanceRadius float64

var distanceCmd = &cobra.Command{
	Use:   "distance <lat,lng> <lat,lng>",
	Short: "Print the great-circle distance between two points",
	Args:  cobra.ExactArgs(2),
	RunE:  distanceAction,
}

func init() {
	distanceCmd.Flags().Float64Var(&distanceRadius, "radius", 0, "also report whether the second point is within this many km")
	rootCmd.AddCommand(distanceCmd)
}

func distanceAction(cmd *cobra.Command, args []string) error {
	from, err := geo.ParseCoordinate(args[0])
	if err != nil {
		return fmt.Errorf("parse first point: %w", err)
	}

	to, err := geo.ParseCoordinate(args[1])
	if err != nil {
		return fmt.Errorf("parse second point: %w", err)
	}

	distance := geoService.DistanceKm(from, to)
	fmt.Fprintf(cmd.OutOrStdout(), "%.3f km\n", distance)

	if distanceRadius > 0 {
		within := geoService.WithinRadius(from, to, distanceRadius)
		fmt.Fprintf(cmd.OutOrStdout(), "within %.1f km: %t\n", distanceRadius, within)
	}
	return nil
}
