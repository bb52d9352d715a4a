package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhkim/babel/audiocapture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	Long: `Lists every input-capable audio device with its index, channel count,
and sample rate. The device marked with * is what "auto" would pick,
preferring loopback and virtual-cable devices that carry system audio.`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(_ *cobra.Command, _ []string) error {
	if err := audiocapture.Initialize(); err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}
	defer audiocapture.Terminate()

	devices, err := audiocapture.Devices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No capture devices found.")
		return nil
	}

	auto, err := audiocapture.Resolve("auto")
	if err != nil {
		auto.Index = -1
	}

	fmt.Printf("%-4s %-50s %-10s %8s %9s\n", "", "DEVICE", "HOST API", "CHANNELS", "RATE")
	for _, d := range devices {
		marker := ""
		if d.Index == auto.Index {
			marker = "*"
		}
		fmt.Printf("%-4s %-50s %-10s %8d %9d\n",
			fmt.Sprintf("%s%d", marker, d.Index),
			d.Label(), d.HostAPI, d.Channels, d.SampleRate)
	}
	return nil
}
