// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/audioloader"
	"github.com/ik5/audioloader/decode"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List audio types, their MIME types and decodable containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, t := range audioloader.SupportedAudioTypes() {
				fmt.Fprintf(out, "%-4s %s\n", t, strings.Join(audioloader.MimeTypes(t), ", "))
			}
			fmt.Fprintf(out, "containers: %s\n", strings.Join(decode.New().Formats(), ", "))

			return nil
		},
	}
}
