package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/internal/app"
)

var transcribersCmd = &cobra.Command{
	Use:   "transcribers",
	Short: "List transcription providers",
	Long: `Lists every transcription provider with its type and readiness. The
provider marked with * is the configured one. Providers that are not
ready are set up automatically when a session starts.`,
	Args: cobra.NoArgs,
	RunE: runTranscribers,
}

func init() {
	rootCmd.AddCommand(transcribersCmd)
}

func runTranscribers(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc := app.New(Version)
	if err := svc.InitWith(cfg); err != nil {
		return err
	}
	defer svc.Shutdown()

	fmt.Printf("%-16s %-44s %-7s %s\n", "NAME", "PROVIDER", "TYPE", "READY")
	for _, info := range svc.Transcribers() {
		marker := ""
		if info.Name == cfg.STTProvider {
			marker = "*"
		}
		kind := "api"
		if info.IsLocal {
			kind = "local"
		}
		ready := "no"
		if info.IsReady {
			ready = "yes"
		}
		fmt.Printf("%-16s %-44s %-7s %s\n", marker+info.Name, info.DisplayName, kind, ready)
	}
	return nil
}
