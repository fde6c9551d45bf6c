package tournaments

import (
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
)

// OrderTeams returns the auction sequence for a tournament's teams.
//
// The sequence must be a pure function of its inputs: every process
// that orders the same teams for the same league derives the identical
// sequence, because the clock-derived position is an index into it.
// RANDOM therefore shuffles with a generator seeded from the league id,
// not from entropy.
func OrderTeams(teams []models.TournamentTeam, ordering models.TeamOrdering, orderingSeed uuid.UUID) []models.TournamentTeam {
	out := append([]models.TournamentTeam(nil), teams...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seed != out[j].Seed {
			return out[i].Seed < out[j].Seed
		}
		return out[i].Region < out[j].Region
	})

	if ordering == models.TeamOrderingRandom {
		rng := rand.New(rand.NewSource(seedFromUUID(orderingSeed)))
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

func seedFromUUID(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]))
}
