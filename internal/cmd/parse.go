package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/campaignkit/docweave/pkg/markup"
)

// parseCmd normalizes markup and prints the resulting operation list.
// Useful for inspecting what the synthesizer would render without
// touching any remote document.
func parseCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Normalize markup and print the content operations as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var ops []markup.ContentOp
			if markdown {
				ops = markup.FromMarkdown(src)
			} else {
				ops = markup.Normalize(string(src))
			}

			views := make([]any, 0, len(ops))
			for _, op := range ops {
				views = append(views, opView(op))
			}
			data, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return errors.WithStack(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return errors.WithStack(err)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Treat the input as Markdown instead of tag markup.")

	return cmd
}

func opView(op markup.ContentOp) any {
	switch op := op.(type) {
	case markup.TextOp:
		return struct {
			Type string `json:"type"`
			markup.TextOp
		}{"text", op}
	case markup.ListOp:
		return struct {
			Type string `json:"type"`
			markup.ListOp
		}{"list", op}
	case markup.TableOp:
		return struct {
			Type string `json:"type"`
			markup.TableOp
		}{"table", op}
	}
	return op
}
