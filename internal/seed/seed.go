// Package seed fills a race store with dummy leaderboard entries for local play.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hamsterrace/raceboard/internal/dependencies/clock"
	"github.com/hamsterrace/raceboard/internal/dependencies/random"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// Map is a playable stage
type Map struct {
	ID    string
	Title string
}

// Colors are the hamster colors a player can pick
var Colors = []string{"Yellow", "Pink", "Cyan", "Black", "Green", "Purple", "Red", "Blue"}

// Maps lists every stage shipped with the game
var Maps = []Map{
	{ID: "StageI.tmx", Title: "I - Welcome to Hamster Planet!"},
	{ID: "StageII.tmx", Title: "II - Splitting Hairs"},
	{ID: "StageIII.tmx", Title: "III - The Stranger Lands"},
	{ID: "StageIV.tmx", Title: "IV - Jet Jet Go!"},
	{ID: "StageV.tmx", Title: "V - Run Run Run!"},
	{ID: "StageVI.tmx", Title: "VI - A Twisty Maze"},
	{ID: "StageVII.tmx", Title: "VII - Dunescape"},
	{ID: "StageVIII.tmx", Title: "VIII - Swamps of Travesty"},
	{ID: "StageIX.tmx", Title: "IX - Wide Chasm"},
	{ID: "StageX.tmx", Title: "X - Hamster Island"},
}

// MapIDs returns the ID of every map in Maps
func MapIDs() []string {
	ids := make([]string, len(Maps))
	for i, m := range Maps {
		ids[i] = m.ID
	}
	return ids
}

// Generator produces dummy records
type Generator struct {
	random random.Random
	clock  clock.Clock
}

// NewGenerator creates a Generator
func NewGenerator(random random.Random, clock clock.Clock) *Generator {
	return &Generator{random: random, clock: clock}
}

// Records builds perMap entries for each map, shuffled across maps. The i-th
// entry of a map gets a time and name suffix drawn from [0, i*50).
func (g *Generator) Records(maps []string, perMap int) []model.RaceRecord {
	now := g.clock.Now()
	records := make([]model.RaceRecord, 0, len(maps)*perMap)
	for _, m := range maps {
		for i := 0; i < perMap; i++ {
			records = append(records, model.RaceRecord{
				Color:     Colors[g.random.Intn(len(Colors))],
				Name:      fmt.Sprintf("Entry%d", g.random.Intn(i*50)),
				Map:       m,
				Time:      int64(g.random.Intn(i * 50)),
				CreatedAt: now,
			})
		}
	}

	for i := len(records) - 1; i > 0; i-- {
		j := g.random.Intn(i + 1)
		records[i], records[j] = records[j], records[i]
	}
	return records
}

// Seed appends records to store in order and returns how many were written
func Seed(ctx context.Context, store storage.RaceStore, records []model.RaceRecord, logger *slog.Logger) (int, error) {
	for i := range records {
		if err := store.AppendRace(ctx, &records[i]); err != nil {
			return i, fmt.Errorf("seeding record %d: %w", i, err)
		}
	}
	logger.Info("leaderboard seeded", slog.Int("count", len(records)))
	return len(records), nil
}
