package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"qrlens/internal/camera"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "利用可能なカメラデバイスを一覧表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		discovery := camera.NewLinuxDiscovery()
		devices, err := discovery.ScanDevices(cmd.Context())
		if err != nil {
			return fmt.Errorf("デバイスのスキャンに失敗しました: %w", err)
		}

		if len(devices) == 0 {
			fmt.Println("カメラデバイスが見つかりませんでした")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DEVICE\tNAME")
		fmt.Fprintln(w, "------\t----")
		for _, device := range devices {
			fmt.Fprintf(w, "%s\t%s\n", device, camera.DeviceName(device))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
