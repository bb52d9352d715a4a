package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/akhkim/babel/config"
	"github.com/akhkim/babel/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running instance",
	Long: `Queries the overlay endpoint of a running babel instance and prints
the session state.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/status", cfg.OverlayAddr))
	if err != nil {
		return fmt.Errorf("no running instance at %s: %w", cfg.OverlayAddr, err)
	}
	defer resp.Body.Close()

	var st types.SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	if !st.Active {
		fmt.Println("Session: idle")
		fmt.Printf("Mode:    %s\n", st.Mode)
		return nil
	}

	fmt.Println("Session: active")
	fmt.Printf("Mode:        %s\n", st.Mode)
	fmt.Printf("Device:      %s\n", st.Device)
	fmt.Printf("Languages:   %s -> %s\n", st.SourceLang, st.TargetLang)
	fmt.Printf("Transcriber: %s\n", st.Transcriber)
	fmt.Printf("Translator:  %s\n", st.Translator)
	fmt.Printf("Duration:    %s\n", (time.Duration(st.Duration) * time.Second).Round(time.Second))
	fmt.Printf("Lines:       %d\n", st.LineCount)
	return nil
}
