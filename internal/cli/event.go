package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

func newEventCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage breeding events",
	}
	cmd.AddCommand(
		newEventCreateCmd(configPath),
		newEventConfirmCmd(configPath),
		newEventFailCmd(configPath),
	)
	return cmd
}

func newEventCreateCmd(configPath *string) *cobra.Command {
	var property, female, male, material, donor, technique, date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Validate and create a breeding event",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				eventDate, err := parseDate(date)
				if err != nil {
					return err
				}
				tech, err := parseTechnique(technique)
				if err != nil {
					return err
				}
				input := breeding.EventInput{
					PropertyID:        property,
					FemaleID:          female,
					MaleID:            optional(male),
					GeneticMaterialID: optional(material),
					DonorFemaleID:     optional(donor),
					Technique:         tech,
					EventDate:         eventDate,
				}
				event, _, err := e.service.CreateBreedingEvent(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(event)
			})
		},
	}
	cmd.Flags().StringVar(&property, "property", "", "property id (required)")
	cmd.Flags().StringVar(&female, "female", "", "female animal id (required)")
	cmd.Flags().StringVar(&male, "male", "", "male animal id (natural mating)")
	cmd.Flags().StringVar(&material, "material", "", "genetic material id (AI or embryo transfer)")
	cmd.Flags().StringVar(&donor, "donor", "", "donor female id (embryo transfer)")
	cmd.Flags().StringVar(&technique, "technique", "", "breeding technique (required)")
	cmd.Flags().StringVar(&date, "date", "", "event date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("female")
	_ = cmd.MarkFlagRequired("technique")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEventConfirmCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <event-id>",
		Short: "Confirm a pregnancy for an in-progress event",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				event, err := e.service.ConfirmBreedingEvent(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(event)
			})
		},
	}
}

func newEventFailCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fail <event-id>",
		Short: "Mark an open event as failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				event, err := e.service.FailBreedingEvent(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(event)
			})
		},
	}
}

func parseTechnique(value string) (domain.BreedingTechnique, error) {
	switch domain.BreedingTechnique(value) {
	case domain.TechniqueArtificialInsemination, domain.TechniqueFixedTimeAI,
		domain.TechniqueEmbryoTransfer, domain.TechniqueNaturalMating:
		return domain.BreedingTechnique(value), nil
	default:
		return "", fmt.Errorf("invalid technique %q", value)
	}
}
