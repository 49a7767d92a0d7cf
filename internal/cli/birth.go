package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

func newBirthCmd(configPath *string) *cobra.Command {
	var eventID, date, birthType string
	var skipLactation bool
	var duration int

	cmd := &cobra.Command{
		Use:   "register-birth",
		Short: "Register a birth outcome on a confirmed event",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				birthDate, err := parseDate(date)
				if err != nil {
					return err
				}
				bt, err := parseBirthType(birthType)
				if err != nil {
					return err
				}
				outcome, err := e.service.RegisterBirth(ctx, breeding.BirthInput{
					EventID:       eventID,
					BirthDate:     birthDate,
					Type:          bt,
					SkipLactation: skipLactation,
					DurationDays:  duration,
				})
				if err != nil {
					return err
				}
				return printJSON(outcome)
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "breeding event id (required)")
	cmd.Flags().StringVar(&date, "date", "", "birth date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&birthType, "type", "", "birth type: normal|cesarean|abortion (required)")
	cmd.Flags().BoolVar(&skipLactation, "skip-lactation", false, "do not open a lactation cycle")
	cmd.Flags().IntVar(&duration, "duration", 0, "lactation duration in days (default 305)")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newDryOffCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-off <cycle-id>",
		Short: "Close a lactating cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				cycle, err := e.service.DryOffCycle(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cycle)
			})
		},
	}
}

func parseBirthType(value string) (domain.BirthType, error) {
	switch domain.BirthType(value) {
	case domain.BirthNormal, domain.BirthCesarean, domain.BirthAbortion:
		return domain.BirthType(value), nil
	default:
		return "", fmt.Errorf("invalid birth type %q", value)
	}
}
