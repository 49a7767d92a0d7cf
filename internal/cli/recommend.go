package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"herdcore/internal/breeding"
	"herdcore/internal/export"
)

func newRecommendCmd(configPath *string) *cobra.Command {
	var property string
	var sex string
	var limit int
	var asOf string
	var archive bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank breeding candidates for a property",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				parsedSex, err := parseSex(sex)
				if err != nil {
					return err
				}
				asOfDate, err := parseDate(asOf)
				if err != nil {
					return err
				}
				req := breeding.RankRequest{PropertyID: property, Sex: parsedSex, Limit: limit, AsOf: asOfDate}
				results, err := e.service.Recommend(ctx, req)
				if err != nil {
					return err
				}
				if archive {
					archiver := export.NewArchiver(e.blobs, e.log)
					info, err := archiver.ArchiveRun(ctx, req, results)
					if err != nil {
						return err
					}
					e.log.Info("run archived", zap.String("key", info.Key))
				}
				return printJSON(results)
			})
		},
	}
	cmd.Flags().StringVar(&property, "property", "", "property id (required)")
	cmd.Flags().StringVar(&sex, "sex", "", "filter candidates by sex (F|M)")
	cmd.Flags().IntVar(&limit, "limit", 0, "truncate the ranking")
	cmd.Flags().StringVar(&asOf, "as-of", "", "scoring date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&archive, "archive", false, "archive the run to blob storage")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}

func newRunsCmd(configPath *string) *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived recommendation runs",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				archiver := export.NewArchiver(e.blobs, e.log)
				infos, err := archiver.ListRuns(ctx, property)
				if err != nil {
					return err
				}
				return printJSON(infos)
			})
		},
	}
	cmd.Flags().StringVar(&property, "property", "", "property id (required)")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}
