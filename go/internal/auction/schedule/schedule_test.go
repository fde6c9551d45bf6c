package schedule_test

import (
	"testing"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/schedule"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func testTeams(n int) []models.TournamentTeam {
	teams := make([]models.TournamentTeam, n)
	for i := range teams {
		teams[i] = models.TournamentTeam{ID: uuid.New(), Seed: i + 1}
	}
	return teams
}

func TestResolve(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

	Convey("Given a 3-team schedule with 30s windows and 10s buffers", t, func() {
		s := schedule.Schedule{
			StartAt:             start,
			SecondsPerTeam:      30,
			SecondsBetweenTeams: 10,
			Teams:               testTeams(3),
		}

		Convey("At the start instant the first team is up with a full window", func() {
			pos := schedule.Resolve(s, start)
			So(pos.TeamIndex, ShouldEqual, 0)
			So(pos.Phase, ShouldEqual, schedule.PhaseBidding)
			So(pos.SecondsRemaining, ShouldEqual, 30)
		})

		Convey("At T+35 the first team is in its buffer with 5s left", func() {
			pos := schedule.Resolve(s, start.Add(35*time.Second))
			So(pos.TeamIndex, ShouldEqual, 0)
			So(pos.Phase, ShouldEqual, schedule.PhaseBuffer)
			So(pos.SecondsRemaining, ShouldEqual, 5)
		})

		Convey("At T+40 the second team's window opens", func() {
			pos := schedule.Resolve(s, start.Add(40*time.Second))
			So(pos.TeamIndex, ShouldEqual, 1)
			So(pos.Phase, ShouldEqual, schedule.PhaseBidding)
			So(pos.SecondsRemaining, ShouldEqual, 30)
		})

		Convey("At T+125 all three cycles have elapsed and the auction is completed", func() {
			pos := schedule.Resolve(s, start.Add(125*time.Second))
			So(pos.Phase, ShouldEqual, schedule.PhaseCompleted)
			So(pos.TeamIndex, ShouldEqual, 2)
			So(pos.SecondsRemaining, ShouldEqual, 0)
		})

		Convey("Resolving the same instant twice yields the same position", func() {
			now := start.Add(73 * time.Second)
			So(schedule.Resolve(s, now), ShouldResemble, schedule.Resolve(s, now))
		})

		Convey("Team index never decreases and completion is sticky", func() {
			lastIndex := 0
			completed := false
			for sec := 0; sec <= 200; sec++ {
				pos := schedule.Resolve(s, start.Add(time.Duration(sec)*time.Second))
				So(pos.TeamIndex, ShouldBeGreaterThanOrEqualTo, lastIndex)
				if completed {
					So(pos.Phase, ShouldEqual, schedule.PhaseCompleted)
				}
				lastIndex = pos.TeamIndex
				completed = completed || pos.Phase == schedule.PhaseCompleted
			}
			So(completed, ShouldBeTrue)
		})
	})

	Convey("Given a schedule with no buffer between teams", t, func() {
		s := schedule.Schedule{
			StartAt:        start,
			SecondsPerTeam: 20,
			Teams:          testTeams(2),
		}

		Convey("The second team's window opens the instant the first closes", func() {
			pos := schedule.Resolve(s, start.Add(20*time.Second))
			So(pos.TeamIndex, ShouldEqual, 1)
			So(pos.Phase, ShouldEqual, schedule.PhaseBidding)
			So(pos.SecondsRemaining, ShouldEqual, 20)
		})

		Convey("No instant ever resolves to the buffer phase", func() {
			for sec := 0; sec < 40; sec++ {
				pos := schedule.Resolve(s, start.Add(time.Duration(sec)*time.Second))
				So(pos.Phase, ShouldNotEqual, schedule.PhaseBuffer)
			}
		})
	})

	Convey("Given a schedule with no teams", t, func() {
		s := schedule.Schedule{StartAt: start, SecondsPerTeam: 30}

		Convey("It resolves to completed immediately", func() {
			pos := schedule.Resolve(s, start)
			So(pos.Phase, ShouldEqual, schedule.PhaseCompleted)
		})
	})
}

func TestStarted(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	s := schedule.Schedule{StartAt: start, SecondsPerTeam: 30, Teams: testTeams(1)}

	Convey("Started is false before the start instant and true from it on", t, func() {
		So(s.Started(start.Add(-time.Second)), ShouldBeFalse)
		So(s.Started(start), ShouldBeTrue)
		So(s.Started(start.Add(time.Hour)), ShouldBeTrue)
	})
}

func TestNextBoundary(t *testing.T) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	s := schedule.Schedule{
		StartAt:             start,
		SecondsPerTeam:      30,
		SecondsBetweenTeams: 10,
		Teams:               testTeams(3),
	}

	Convey("NextBoundary lands on the end of the active phase", t, func() {
		So(schedule.NextBoundary(s, start), ShouldEqual, start.Add(30*time.Second))
		So(schedule.NextBoundary(s, start.Add(35*time.Second)), ShouldEqual, start.Add(40*time.Second))

		Convey("and is the identity once completed", func() {
			now := start.Add(500 * time.Second)
			So(schedule.NextBoundary(s, now), ShouldEqual, now)
		})
	})
}
