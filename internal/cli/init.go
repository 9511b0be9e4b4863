package cli

import (
	"fmt"
	"io"

	"github.com/mvp-joe/repo-digest/internal/config"
	"github.com/spf13/cobra"
)

var forceFlag bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .digest/config.yml",
	Long: `Init writes the built-in defaults to .digest/config.yml in the repository
root so they can be edited. An existing file is kept unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := projectRoot()
		if err != nil {
			return err
		}
		return executeInit(cmd.OutOrStdout(), rootDir, forceFlag)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite an existing config file")
}

func executeInit(out io.Writer, rootDir string, force bool) error {
	path, err := config.Write(rootDir, config.Default(), force)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", path)
	return nil
}
