package main

import (
	"fmt"
	"os"

	"github.com/example/supertonic-go/internal/voice"
	"github.com/spf13/cobra"
)

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available voice style IDs",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, id := range []voice.ID{voice.F1, voice.F2, voice.M1, voice.M2} {
				if _, err := fmt.Fprintln(os.Stdout, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
