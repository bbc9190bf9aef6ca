package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/types"
	"github.com/Neperienx/souvella-web-sub000/pkg/repository/sqlite"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })
}

func TestRenderGems(t *testing.T) {
	disableColor(t)

	memories := []*model.Memory{
		{
			ID:            "m1",
			AuthorID:      "alice",
			Kind:          types.MemoryKindText,
			Body:          "first  walk\nby the sea",
			ReactionCount: 2,
			CreatedAt:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "m2",
			AuthorID:  "bob",
			Kind:      types.MemoryKindImage,
			MediaRef:  "gs://bucket/photo.jpg",
			CreatedAt: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	renderGems(&buf, "2026-05-03", memories)

	out := buf.String()
	gt.S(t, out).Contains("Gems of 2026-05-03")
	gt.S(t, out).Contains(" 1. [text] ♥2 first walk by the sea")
	gt.S(t, out).Contains(" 2. [image] ♥0 gs://bucket/photo.jpg")
	gt.S(t, out).Contains("m1 by alice at 2026-05-01 10:00")

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		renderGems(&buf, "2026-05-03", nil)
		gt.S(t, buf.String()).Contains("no memories yet")
	})
}

func TestSummarizeTruncates(t *testing.T) {
	m := &model.Memory{Body: strings.Repeat("あ", 100)}
	got := []rune(summarize(m))
	gt.A(t, got).Length(72)
	gt.Value(t, string(got[71])).Equal("…")
}

func TestGemsCommand(t *testing.T) {
	disableColor(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "souvella.db")

	db, err := sqlite.Open(ctx, path)
	gt.NoError(t, err).Required()
	rel, err := db.Relationship().Create(ctx, &model.Relationship{
		Name:       "us",
		MemberIDs:  []string{"alice", "bob"},
		InviteCode: "ABCDEF",
	})
	gt.NoError(t, err).Required()
	for _, body := range []string{"one", "two", "three", "four"} {
		_, err := db.Memory().Create(ctx, &model.Memory{
			RelationshipID: rel.ID,
			AuthorID:       "alice",
			Kind:           types.MemoryKindText,
			Body:           body,
		})
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, db.Close()).Required()

	run := func(t *testing.T, args ...string) string {
		t.Helper()
		var buf bytes.Buffer
		cmd := cmdGems()
		cmd.Writer = &buf
		base := []string{"gems", "--repository-backend", "sqlite", "--sqlite-path", path, "--relationship-id", string(rel.ID)}
		gt.NoError(t, cmd.Run(ctx, append(base, args...))).Required()
		return buf.String()
	}

	first := run(t)
	gt.Number(t, strings.Count(first, "[text]")).Equal(3)
	gt.Value(t, run(t)).Equal(first)

	rerolled := run(t, "--reroll", "--count", "2")
	gt.Number(t, strings.Count(rerolled, "[text]")).Equal(2)
	gt.Value(t, run(t)).Equal(rerolled)
}
