package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"lingclip/internal/subtitle"
)

func newSanitizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sanitize [text]",
		Short:       "Sanitize subtitle text",
		Long:        "Applies the subtitle cleanup rules to the argument, or to each line of stdin when no argument is given. Lines that sanitize to nothing print empty.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				fmt.Fprintln(out, subtitle.Sanitize(args[0]))
				return nil
			}
			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				fmt.Fprintln(out, subtitle.Sanitize(scanner.Text()))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		},
	}
}
