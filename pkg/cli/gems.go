package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/cli/config"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/usecase"
	"github.com/Neperienx/souvella-web-sub000/pkg/utils/logging"
)

func cmdGems() *cli.Command {
	var relationshipID string
	var reroll bool
	var count int
	var date string
	var repoCfg config.Repository
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "relationship-id",
			Aliases:     []string{"r"},
			Usage:       "Relationship to show the gems of",
			Required:    true,
			Destination: &relationshipID,
		},
		&cli.BoolFlag{
			Name:        "reroll",
			Usage:       "Replace today's selection with a new sample",
			Destination: &reroll,
		},
		&cli.IntFlag{
			Name:        "count",
			Aliases:     []string{"n"},
			Usage:       "Number of memories to select (0 uses the policy default)",
			Destination: &count,
		},
		&cli.StringFlag{
			Name:        "date",
			Usage:       "Day to show (YYYY-MM-DD, defaults to today)",
			Destination: &date,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "gems",
		Aliases: []string{"g"},
		Usage:   "Compute or fetch the daily selection of a relationship",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if reroll && date != "" {
				return goerr.New("--reroll always applies to today and cannot be combined with --date")
			}
			if count < 0 {
				return goerr.New("--count must not be negative", goerr.V("count", count))
			}

			policy, err := policyCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithPolicy(policy))
			relID := model.RelationshipID(relationshipID)

			day := uc.Today()
			var memories []*model.Memory
			if reroll {
				if count == 0 {
					count = policy.DefaultSelectionCount
				}
				memories, err = uc.Selection.RerollDailySelection(ctx, relID, count)
			} else {
				if date != "" {
					if day, err = model.ParseDay(date); err != nil {
						return err
					}
				}
				memories, err = uc.Selection.ComputeOrFetchDailySelection(ctx, relID, day, count)
			}
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			renderGems(w, day, memories)
			return nil
		},
	}
}

func renderGems(w io.Writer, day model.Day, memories []*model.Memory) {
	header := color.New(color.FgCyan, color.Bold)
	kind := color.New(color.FgMagenta)
	hearts := color.New(color.FgRed)
	faint := color.New(color.Faint)

	header.Fprintf(w, "Gems of %s\n", day)
	if len(memories) == 0 {
		faint.Fprintln(w, "  no memories yet")
		return
	}

	for i, m := range memories {
		fmt.Fprintf(w, "%2d. %s %s %s\n",
			i+1,
			kind.Sprintf("[%s]", m.Kind),
			hearts.Sprintf("♥%d", m.ReactionCount),
			summarize(m),
		)
		faint.Fprintf(w, "    %s by %s at %s\n", m.ID, m.AuthorID, m.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// summarize returns the one-line text shown for a memory
func summarize(m *model.Memory) string {
	text := strings.Join(strings.Fields(m.Body), " ")
	if text == "" {
		text = m.MediaRef
	}

	const maxLen = 72
	if r := []rune(text); len(r) > maxLen {
		text = string(r[:maxLen-1]) + "…"
	}
	return text
}
