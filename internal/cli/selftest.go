package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	selfTestUsers  = 10
	selfTestCycles = 3
)

func newSelfTestCommand() *cobra.Command {
	flags := &populationFlags{}
	command := &cobra.Command{
		Use:   "selftest",
		Short: "Generate a small population and verify it",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			return RunSelfTestCommand(cmd.Context(), cmd.OutOrStdout(), options)
		},
	}
	flags.register(command, selfTestUsers, selfTestCycles)
	return command
}

func RunSelfTestCommand(ctx context.Context, out io.Writer, options PopulationOptions) error {
	users, set, err := options.generate(ctx)
	if err != nil {
		return err
	}

	logs := 0
	for _, user := range users {
		logs += len(user.Logs)
	}
	_, err = fmt.Fprintf(out, "self-test passed: %d users, %d logs, %d training rows\n", len(users), logs, set.Rows())
	return err
}
