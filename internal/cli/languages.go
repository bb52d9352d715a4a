package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhkim/babel/lang"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported translation targets",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		for _, name := range lang.Names() {
			fmt.Printf("%-24s %s\n", name, lang.Targets[name])
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
