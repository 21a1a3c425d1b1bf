package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhenniges/mail-rotator/internal/rotator"
)

var resetIndex bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show or reset the persisted rotation index",
	Run: func(_ *cobra.Command, _ []string) {
		store := rotator.NewIndexStore(viper.GetString("index_file"))

		if resetIndex {
			store.Store(0)
			fmt.Println("Rotation index reset to 0.")
			return
		}

		fmt.Printf("Rotation index: %d\n", store.Load())
	},
}

func init() {
	indexCmd.Flags().BoolVar(&resetIndex, "reset", false, "Reset the rotation index to 0")
}
