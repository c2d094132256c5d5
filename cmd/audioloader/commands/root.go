// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audioloader/internal/config"
	"github.com/ik5/audioloader/internal/logger"
)

type globalFlags struct {
	cfgFile string
	envFile string
	verbose bool
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "audioloader",
		Short: "Decode the audio referenced by a document batch",
		Long: `audioloader reads a YAML batch manifest, decodes every document whose
MIME type is a configured audio type, and reports the decoded buffers.

Examples:
  # Load with defaults (mp3 + wav at 22050 Hz, root documents)
  audioloader load batch.yaml

  # Only wav, process chunks, keep the decoded audio
  AUDIOLOADER_AUDIO_TYPES=wav audioloader load batch.yaml --access-paths c --export-dir out/
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", "", "dotenv file (default .env)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newLoadCommand(&g))
	root.AddCommand(newFormatsCommand())

	return root
}

// Execute runs the tool with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (g *globalFlags) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.cfgFile, g.envFile)
	if err != nil {
		return nil, nil, err
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}
