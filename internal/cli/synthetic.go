package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const (
	maxPopulationUsers  = 1000
	maxPopulationCycles = 24
	startDateLayout     = "2006-01-02"
)

type PopulationOptions struct {
	Users  int
	Cycles int
	Seed   uint64
	Start  time.Time
}

func (options PopulationOptions) validate() error {
	if options.Users < 1 || options.Users > maxPopulationUsers {
		return fmt.Errorf("users must be between 1 and %d (got: %d)", maxPopulationUsers, options.Users)
	}
	if options.Cycles < 1 || options.Cycles > maxPopulationCycles {
		return fmt.Errorf("cycles must be between 1 and %d (got: %d)", maxPopulationCycles, options.Cycles)
	}
	return nil
}

// generate builds the population and its training set and runs the self-test
// over both.
func (options PopulationOptions) generate(ctx context.Context) ([]models.SyntheticUser, services.TrainingSet, error) {
	if err := options.validate(); err != nil {
		return nil, services.TrainingSet{}, err
	}
	generator := services.NewGenerator(options.Seed, options.Start)
	users, err := generator.GenerateUsers(ctx, options.Users, options.Cycles)
	if err != nil {
		return nil, services.TrainingSet{}, fmt.Errorf("generate population: %w", err)
	}
	set := services.BuildTrainingSet(users)
	if err := services.SelfTest(users, set); err != nil {
		return users, set, err
	}
	return users, set, nil
}

type populationFlags struct {
	users  int
	cycles int
	seed   uint64
	start  string
}

func (flags *populationFlags) register(command *cobra.Command, defaultUsers int, defaultCycles int) {
	command.Flags().IntVar(&flags.users, "users", defaultUsers, "number of synthetic users")
	command.Flags().IntVar(&flags.cycles, "cycles", defaultCycles, "cycles generated per user")
	command.Flags().Uint64Var(&flags.seed, "seed", 1, "generator seed")
	command.Flags().StringVar(&flags.start, "start", "2024-01-01", "first possible cycle start (YYYY-MM-DD)")
}

func (flags *populationFlags) options() (PopulationOptions, error) {
	start, err := time.Parse(startDateLayout, flags.start)
	if err != nil {
		return PopulationOptions{}, fmt.Errorf("invalid start date %q: %w", flags.start, err)
	}
	return PopulationOptions{
		Users:  flags.users,
		Cycles: flags.cycles,
		Seed:   flags.seed,
		Start:  start,
	}, nil
}

func newSyntheticCommand() *cobra.Command {
	flags := &populationFlags{}
	var output string
	command := &cobra.Command{
		Use:   "synthetic",
		Short: "Export a synthetic training set as JSON",
		Long: `Generate a synthetic population and export its training set.

Examples:
  cyclecore synthetic --users 50 --cycles 6 --output training.json
  cyclecore synthetic --seed 42 > training.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			return RunSyntheticCommand(cmd.Context(), cmd.OutOrStdout(), options, output)
		},
	}
	flags.register(command, services.DefaultSyntheticUsers, services.DefaultSyntheticCycles)
	command.Flags().StringVarP(&output, "output", "o", "", "file to write, stdout when empty")
	return command
}

// RunSyntheticCommand writes the training set to output, or to out when
// output is empty or "-".
func RunSyntheticCommand(ctx context.Context, out io.Writer, options PopulationOptions, output string) error {
	_, set, err := options.generate(ctx)
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		return writeTrainingSet(out, set)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := writeTrainingSet(file, set); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	_, err = fmt.Fprintf(out, "wrote %d rows for %d users to %s\n", set.Rows(), options.Users, output)
	return err
}

func writeTrainingSet(out io.Writer, set services.TrainingSet) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return fmt.Errorf("encode training set: %w", err)
	}
	return nil
}
