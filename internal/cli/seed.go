package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"herdcore/internal/logger"
	"herdcore/pkg/domain"
)

type seedDocument struct {
	Animals          []domain.Animal          `json:"animals"`
	GeneticMaterials []domain.GeneticMaterial `json:"genetic_materials"`
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load animals and genetic material from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return errors.Wrap(err, "read seed file")
				}
				var doc seedDocument
				if err := json.Unmarshal(raw, &doc); err != nil {
					return errors.Wrap(err, "decode seed file")
				}
				for _, animal := range doc.Animals {
					if _, _, err := e.service.RegisterAnimal(ctx, animal); err != nil {
						return errors.Wrapf(err, "register animal %s", animal.Tag)
					}
				}
				for _, material := range doc.GeneticMaterials {
					if _, _, err := e.service.RegisterGeneticMaterial(ctx, material); err != nil {
						return errors.Wrapf(err, "register genetic material %s", material.Code)
					}
				}
				e.log.Info("seed complete",
					zap.Int(logger.FieldCount, len(doc.Animals)+len(doc.GeneticMaterials)),
				)
				return nil
			})
		},
	}
}

func newAnimalsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "animals",
		Short: "List registered animals",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withEnv(*configPath, func(ctx context.Context, e *env) error {
				return printJSON(e.service.ListAnimals(ctx))
			})
		},
	}
}
