package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dropoff-locator/internal/models"
	"dropoff-locator/internal/proximity"
	"dropoff-locator/internal/service"

	"github.com/spf13/cobra"
)

type checkReport struct {
	Source      string                  `json:"source" yaml:"source"`
	Accepted    int                     `json:"accepted" yaml:"accepted"`
	Dropped     int                     `json:"dropped" yaml:"dropped"`
	ByCategory  map[models.Category]int `json:"by_category" yaml:"by_category"`
	Diagnostics []models.Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
}

func newCheckCommand() *cobra.Command {
	flags := sourceFlags{}
	strict := false

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ingest the feed once and report accepted and dropped rows.",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateSourceFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(flags.Format)
			if err != nil {
				return err
			}

			svc := service.NewLocationService(flags.source(), service.WithLogger(flags.logger(cmd)))
			refresh, err := svc.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			report := checkReport{
				Source:      sourceLabel(flags),
				Accepted:    refresh.Accepted,
				Dropped:     refresh.Dropped,
				ByCategory:  proximity.CountByCategory(svc.Snapshot()),
				Diagnostics: svc.Diagnostics(),
			}
			if err := writeCheckReport(cmd, report, format); err != nil {
				return err
			}
			if strict && report.Dropped > 0 {
				return &exitError{code: ExitRowsDropped}
			}
			return nil
		},
	}
	addSourceFlags(cmd, &flags)
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 3 when any row is dropped.")
	return cmd
}

func writeCheckReport(cmd *cobra.Command, report checkReport, format Format) error {
	if format != FormatTable {
		rendered, err := renderPayload(report, format)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), rendered)
	}

	counts := make([][]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		counts = append(counts, []string{string(c), strconv.Itoa(report.ByCategory[c])})
	}
	summary := fmt.Sprintf("source: %s\naccepted: %d\ndropped: %d\n", report.Source, report.Accepted, report.Dropped)
	text := summary + "\n" + renderTable("", []string{"CATEGORY", "COUNT"}, counts)

	if len(report.Diagnostics) > 0 {
		rows := make([][]string, 0, len(report.Diagnostics))
		for _, d := range report.Diagnostics {
			rows = append(rows, []string{strconv.Itoa(d.Row), d.Reason, d.Detail})
		}
		text += "\n\n" + renderTable("dropped rows:", []string{"ROW", "REASON", "DETAIL"}, rows)
	}
	return writeOutput(cmd.OutOrStdout(), text)
}

type nearestPayload struct {
	Location      models.LocationRecord `json:"location" yaml:"location"`
	Geohash       string                `json:"geohash" yaml:"geohash"`
	DistanceMiles float64               `json:"distance_miles" yaml:"distance_miles"`
}

func newNearestCommand() *cobra.Command {
	flags := sourceFlags{}
	var lat, lon float64
	category := ""

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find the location closest to a point.",
		Args:  noArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateSourceFlags(cmd); err != nil {
				return err
			}
			return requireFlags(cmd, "lat", "lon")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(flags.Format)
			if err != nil {
				return err
			}
			filter, err := models.ParseCategoryFilter(category)
			if err != nil {
				return err
			}
			point := models.QueryPoint{Latitude: lat, Longitude: lon}
			if err := point.Validate(); err != nil {
				return err
			}

			svc := service.NewLocationService(flags.source(), service.WithLogger(flags.logger(cmd)))
			if _, err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}

			result, err := svc.Nearest(point, filter)
			if errors.Is(err, proximity.ErrEmptySnapshot) {
				return fmt.Errorf("no %s locations available", filterLabel(filter))
			}
			if err != nil {
				return err
			}

			payload := nearestPayload{
				Location:      result.Location,
				Geohash:       result.Location.Geohash(models.GeohashPrecision),
				DistanceMiles: result.DistanceMiles,
			}
			if format != FormatTable {
				rendered, err := renderPayload(payload, format)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), rendered)
			}

			loc := payload.Location
			text := renderTable("", []string{"ID", "NAME", "CATEGORY", "ADDRESS", "DISTANCE_MI"}, [][]string{{
				loc.ID,
				loc.Name,
				string(loc.Category),
				loc.Address,
				strconv.FormatFloat(payload.DistanceMiles, 'f', 1, 64),
			}})
			return writeOutput(cmd.OutOrStdout(), text)
		},
	}
	addSourceFlags(cmd, &flags)
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the query point.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the query point.")
	cmd.Flags().StringVar(&category, "category", "all", "Restrict the search to bin, goodwill, thrift or other.")
	return cmd
}

func sourceLabel(flags sourceFlags) string {
	if strings.TrimSpace(flags.File) != "" {
		return flags.File
	}
	return flags.URL
}

func filterLabel(c models.Category) string {
	if c == models.CategoryAll {
		return "matching"
	}
	return string(c)
}
