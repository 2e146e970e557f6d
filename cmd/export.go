package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump persisted mentions as CSV or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mentions, err := st.ListMentions(ctx)
		if err != nil {
			return eris.Wrap(err, "list mentions")
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOut)
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "csv":
			err = writeMentionsCSV(w, mentions)
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			err = enc.Encode(mentions)
		default:
			return eris.Errorf("unsupported export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("mentions", len(mentions)),
			zap.String("format", exportFormat),
		)
		return nil
	},
}

func writeMentionsCSV(w io.Writer, mentions []model.Mention) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "organization_id", "outlet_id", "article_url", "headline", "published_date", "excerpt", "mention_type", "created_at"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, m := range mentions {
		outletID := ""
		if m.OutletID != nil {
			outletID = strconv.FormatInt(*m.OutletID, 10)
		}
		published := ""
		if m.PublishedDate != nil {
			published = m.PublishedDate.Format("2006-01-02")
		}
		row := []string{
			m.ID,
			m.OrganizationID,
			outletID,
			m.ArticleURL,
			m.Headline,
			published,
			m.Excerpt,
			m.MentionType,
			m.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "write csv row %s", m.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
