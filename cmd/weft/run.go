package main

import (
	"fmt"
	"os"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <program.yaml>",
	Short: "Send a single message to a program file",
	Long: `Compiles the program, sends it one message built from --payload and prints the result.
The exit code is non-zero when the request fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{ProgramPath: args[0]}
		opts.Payload, _ = cmd.Flags().GetString("payload")
		opts.PayloadFile, _ = cmd.Flags().GetString("payload-file")
		opts.MessageID, _ = cmd.Flags().GetString("id")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.Debug = cfg.LogLevel == "debug"

		if fd := int(os.Stdout.Fd()); !opts.JSON && term.IsTerminal(fd) {
			opts.Pretty = true
			if w, _, err := term.GetSize(fd); err == nil {
				opts.Width = w
			}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		result, err := cli.Run(ctx, cfg, logger, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("request %s failed: %s", result.MessageID, result.Failure.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("payload", "", "Message payload as a JSON object")
	runCmd.Flags().String("payload-file", "", "Read the payload from a file ('-' for stdin)")
	runCmd.Flags().String("id", "", "Message ID (generated when empty)")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().Bool("trace", false, "Append a Mermaid graph highlighting the visited nodes")
}
