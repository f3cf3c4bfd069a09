package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/imageio"
)

var errNoDocument = errors.New("no document outline found")

func (a *app) scanCmd() *cobra.Command {
	var (
		strict     bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "scan <input> <output>",
		Short: "Scan a single photo into a PNG",
		Long: `Scan a single photo. The output format follows the output extension (PNG when
unknown). When no page outline is found the placeholder image is written; use
--strict to fail instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			sc, err := a.newScanner()
			if err != nil {
				return err
			}
			img, err := imageio.Open(in)
			if err != nil {
				return err
			}

			res, err := sc.Process(img)
			if err != nil {
				return err
			}
			if !res.Found && strict {
				return fmt.Errorf("%s: %w", in, errNoDocument)
			}
			if err := imageio.Save(out, res.Image); err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"input":   in,
					"output":  out,
					"found":   res.Found,
					"corners": res.Corners,
					"width":   res.Image.Bounds().Dx(),
					"height":  res.Image.Bounds().Dy(),
				})
			}

			if res.Found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%dx%d)\n", in, out, res.Width, res.Height)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (no document found, placeholder written)\n", in, out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when no document outline is found")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "print the result as JSON")
	return cmd
}
