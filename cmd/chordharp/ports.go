package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/chordharp/midiout"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := midiout.ListPorts()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI output ports")
			return nil
		}
		for i, n := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, n)
		}
		return nil
	},
}
