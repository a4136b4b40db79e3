package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campaignkit/docweave/internal/export"
	"github.com/campaignkit/docweave/internal/gdocs"
	"github.com/campaignkit/docweave/internal/log"
	"github.com/campaignkit/docweave/pkg/markup"
	"github.com/campaignkit/docweave/pkg/synth"
)

func renderCmd() *cobra.Command {
	var (
		title      string
		brand      string
		structure  string
		language   string
		folder     string
		shareWith  string
		documentID string
		markdown   bool
		draftPath  string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render markup or a draft into a Google Doc",
		Long: `Render reads constrained markup (or a draft JSON file) and synthesizes
it into a Google Doc. Without --document-id a new document is created;
with it, content is appended to the existing document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Flush()
			logger := log.Get()
			ctx := cmd.Context()

			var (
				ops      []markup.ContentOp
				docTitle string
			)
			switch {
			case draftPath != "":
				data, err := os.ReadFile(draftPath)
				if err != nil {
					return errors.Wrapf(err, "failed to read draft %q", draftPath)
				}
				var draft export.Draft
				if err := json.Unmarshal(data, &draft); err != nil {
					return errors.Wrapf(err, "failed to parse draft %q", draftPath)
				}
				ops = draft.Ops(structure, language)
				docTitle = export.DocumentTitle(brand, draft.Subject, time.Now())
			default:
				src, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				if markdown {
					ops = markup.FromMarkdown(src)
				} else {
					ops = markup.Normalize(string(src))
				}
				docTitle = title
				if docTitle == "" {
					docTitle = "docweave - " + time.Now().Format("20060102_150405")
				}
			}

			client, err := gdocs.NewClient(ctx, cfg, logger)
			if err != nil {
				return err
			}

			var docURL string
			if documentID == "" {
				created, err := client.CreateDocument(ctx, docTitle)
				if err != nil {
					return err
				}
				documentID = created.ID
				docURL = created.URL
			}

			synthesizer := synth.New(client.Backend(documentID), synth.Options{
				BatchLimit:        cfg.BatchLimit,
				RequestsPerMinute: cfg.RequestsPerMinute,
				RetryDelay:        cfg.RetryDelay,
				Logger:            logger,
			})
			if err := synthesizer.Synthesize(ctx, ops); err != nil {
				return err
			}

			// Placement and sharing are conveniences; their failure does
			// not undo a successfully rendered document.
			if folder == "" {
				folder = cfg.FolderID
			}
			if folder != "" {
				if err := client.MoveToFolder(ctx, documentID, folder); err != nil {
					logger.Warn("could not move document to folder", zap.Error(err))
				}
			}
			if shareWith == "" {
				shareWith = cfg.ShareWith
			}
			if shareWith != "" {
				if err := client.Share(ctx, documentID, shareWith, cfg.ShareRole); err != nil {
					logger.Warn("could not share document", zap.Error(err))
				}
			}

			if docURL != "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Document ready: %s", docURL))
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Appended to document %s", documentID))
			}
			return errors.WithStack(err)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "Title for the created document.")
	flags.StringVar(&brand, "brand", "Untitled Brand", "Brand name used in draft document titles.")
	flags.StringVar(&structure, "structure", "", "Structure name recorded in the draft layout.")
	flags.StringVar(&language, "language", "", "Language recorded in the draft layout.")
	flags.StringVar(&folder, "folder", "", "Google Drive folder ID to file the document under.")
	flags.StringVar(&shareWith, "share-with", "", "Email address to share the document with.")
	flags.StringVar(&documentID, "document-id", "", "Append to this existing document instead of creating one.")
	flags.BoolVar(&markdown, "markdown", false, "Treat the input as Markdown instead of tag markup.")
	flags.StringVar(&draftPath, "draft", "", "Path to a draft JSON file to render with the fixed field layout.")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		return data, errors.Wrapf(err, "failed to read %q", args[0])
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	return data, errors.Wrap(err, "failed to read stdin")
}
