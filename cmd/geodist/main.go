package main

import (
	"context"
	"errors"
	"fmt"
	"geodistance-service/internal/app"
	"geodistance-service/internal/config"
	"geodistance-service/internal/domain"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// main wires the CLI: distance between two points, or a single geocode lookup.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "geodist",
		Short:         "Compute ellipsoidal distances between coordinates or addresses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newDistanceCmd(), newResolveCmd())
	return rootCmd
}

func newDistanceCmd() *cobra.Command {
	var from, to, ellipsoidName string

	cmd := &cobra.Command{
		Use:   "distance",
		Short: "Distance in meters between two coordinates (lat,lon) or two addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ellipsoid, err := domain.ParseEllipsoid(ellipsoidName)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if ellipsoidName == "" {
				ellipsoid = a.Config.DefaultEllipsoid
			}

			meters, err := a.Service.GetDistance(cmd.Context(), parseEndpoint(from), parseEndpoint(to), ellipsoid)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", meters)
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "origin as lat,lon or an address")
	cmd.Flags().StringVarP(&to, "to", "t", "", "destination as lat,lon or an address")
	cmd.Flags().StringVarP(&ellipsoidName, "ellipsoid", "e", "", "GRS80 or WGS84 (default from DEFAULT_ELLIPSOID)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <address>",
		Short: "Geocode an address to latitude and longitude",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Service.ResolveAddress(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, domain.ErrUnsupportedRegion) {
					return fmt.Errorf("%q could not be geocoded: %w", args[0], err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%v,%v\n", c.Lat, c.Lon)
			return nil
		},
	}
}

func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.Options{Retry: true})
}

// parseEndpoint reads "lat,lon" as coordinates and anything else as an address.
func parseEndpoint(s string) domain.Endpoint {
	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLon == nil {
			return domain.At(domain.Coordinates{Lat: lat, Lon: lon})
		}
	}
	return domain.AddressOf(s)
}
