package tournaments

import (
	"testing"

	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func orderingFixture() []models.TournamentTeam {
	return []models.TournamentTeam{
		{ID: uuid.MustParse("00000000-0000-4000-8000-000000000003"), Name: "Duke", Seed: 2, Region: "East"},
		{ID: uuid.MustParse("00000000-0000-4000-8000-000000000001"), Name: "Gonzaga", Seed: 1, Region: "West"},
		{ID: uuid.MustParse("00000000-0000-4000-8000-000000000004"), Name: "Auburn", Seed: 2, Region: "South"},
		{ID: uuid.MustParse("00000000-0000-4000-8000-000000000002"), Name: "Houston", Seed: 1, Region: "South"},
	}
}

func TestOrderTeams(t *testing.T) {
	leagueID := uuid.MustParse("3d1f0e4a-9c2b-4f6d-8a7e-1b5c9d0e2f3a")

	Convey("Given a tournament field", t, func() {
		teams := orderingFixture()

		Convey("SEED ordering sorts by seed then region", func() {
			got := OrderTeams(teams, models.TeamOrderingSeed, leagueID)

			names := make([]string, len(got))
			for i, team := range got {
				names[i] = team.Name
			}
			So(names, ShouldResemble, []string{"Houston", "Gonzaga", "Duke", "Auburn"})
		})

		Convey("RANDOM ordering is deterministic for the same league", func() {
			first := OrderTeams(teams, models.TeamOrderingRandom, leagueID)
			second := OrderTeams(teams, models.TeamOrderingRandom, leagueID)
			So(first, ShouldResemble, second)

			Convey("and keeps every team exactly once", func() {
				seen := make(map[uuid.UUID]bool, len(first))
				for _, team := range first {
					seen[team.ID] = true
				}
				So(len(seen), ShouldEqual, len(teams))
			})
		})

		Convey("the input slice is never mutated", func() {
			original := orderingFixture()
			OrderTeams(teams, models.TeamOrderingRandom, leagueID)
			So(teams, ShouldResemble, original)
		})
	})
}
