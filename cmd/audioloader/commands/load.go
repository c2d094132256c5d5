// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audioloader"
	"github.com/ik5/audioloader/decode"
	"github.com/ik5/audioloader/docarray"
	"github.com/ik5/audioloader/formats/wav"
)

type loadFlags struct {
	accessPaths string
	exportDir   string
	outManifest string
}

func newLoadCommand(g *globalFlags) *cobra.Command {
	var f loadFlags

	cmd := &cobra.Command{
		Use:   "load <manifest.yaml>",
		Short: "Decode the audio documents of a batch manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			quality, err := cfg.Decode.ResampleQuality()
			if err != nil {
				return err
			}
			dec := decode.New(decode.WithQuality(quality), decode.WithBufferSize(cfg.Decode.BufferSize))

			loader, err := audioloader.New(cfg.Loader,
				audioloader.WithLogger(log),
				audioloader.WithDecodeFunc(dec.Load),
			)
			if err != nil {
				return err
			}

			docs, err := docarray.LoadManifest(args[0])
			if err != nil {
				return err
			}

			params := audioloader.Parameters{}
			if f.accessPaths != "" {
				params[audioloader.AccessPathsParam] = f.accessPaths
			}

			// A failed batch still reports what was loaded before the error.
			loadErr := loader.LoadAudio(cmd.Context(), docs, params)
			if loadErr != nil {
				log.Error("batch aborted", zap.Error(loadErr))
			}

			if err := report(cmd.OutOrStdout(), docs); err != nil {
				return err
			}
			if f.exportDir != "" {
				if err := export(f.exportDir, docs, log); err != nil {
					return err
				}
			}
			if f.outManifest != "" {
				if err := writeManifest(f.outManifest, docs); err != nil {
					return err
				}
			}

			return loadErr
		},
	}

	cmd.Flags().StringVar(&f.accessPaths, "access-paths", "", "override the configured access paths for this run")
	cmd.Flags().StringVar(&f.exportDir, "export-dir", "", "write every decoded buffer as <id>.wav into this directory")
	cmd.Flags().StringVarP(&f.outManifest, "output", "o", "", "write the batch with its tags as YAML to this file")

	return cmd
}

// report prints one line per document of the whole tree.
func report(w io.Writer, docs docarray.DocumentArray) error {
	all, err := docs.TraverseFlat(docarray.RecursiveAccessPath)
	if err != nil {
		return err
	}

	for _, d := range all {
		status := "skipped"
		if d.Blob != nil {
			status = fmt.Sprintf("%d samples @ %v Hz", len(d.Blob), d.Tags[audioloader.SampleRateTag])
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.MimeType, d.URI, status); err != nil {
			return err
		}
	}

	return nil
}

func export(dir string, docs docarray.DocumentArray, log *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}

	all, err := docs.TraverseFlat(docarray.RecursiveAccessPath)
	if err != nil {
		return err
	}

	for _, d := range all {
		if d.Blob == nil {
			continue
		}

		rate, err := toRate(d.Tags[audioloader.SampleRateTag])
		if err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}

		path := filepath.Join(dir, d.ID+".wav")
		if err := writeWAV(path, rate, d.Blob); err != nil {
			return err
		}
		log.Info("exported", zap.String("id", d.ID), zap.String("path", path))
	}

	return nil
}

func writeWAV(path string, rate int, samples []float32) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := wav.WriteFloat32(out, rate, samples); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func writeManifest(path string, docs docarray.DocumentArray) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output manifest: %w", err)
	}

	if err := docarray.WriteManifest(out, docs); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
