package main

import (
	"fmt"
	"os"

	"github.com/aretw0/weft/internal/compiler"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/internal/validator"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Compile program files and check their graphs",
	Long: `Compiles each program file, or every program in each directory, and reports the first error per path.
Compiled programs are then linted for unreachable nodes, unassigned variables and undeclared payload fields.
Lint findings are warnings unless --strict is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			args = []string{cfg.ProgramsDir}
		}

		strict, _ := cmd.Flags().GetBool("strict")
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			programs, err := compilePath(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", tui.Status("FAIL", false), path, err)
				continue
			}
			for _, p := range programs {
				if err := validator.ValidateProgram(p); err != nil {
					if strict {
						failed++
					}
					fmt.Fprintf(out, "%s %v\n", tui.Status("WARN", false), err)
					continue
				}
				fmt.Fprintf(out, "%s %s (%d nodes, depth %d)\n", tui.Status("ok", true), p.Name, p.Graph.Len(), p.Graph.Depth())
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed: %d problem(s)", failed)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "treat lint findings as failures")
	rootCmd.AddCommand(validateCmd)
}

func compilePath(path string) ([]*domain.Program, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return compiler.LoadDir(path)
	}
	prog, err := compiler.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return []*domain.Program{prog}, nil
}
