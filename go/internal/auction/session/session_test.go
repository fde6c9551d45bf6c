package session_test

import (
	"testing"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/schedule"
	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/bracketbid/calcutta/go/internal/models"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	alice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func fixture(capAmount *float64, teams int) (schedule.Schedule, models.AuctionSettings, []models.Participant, time.Time) {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	seq := make([]models.TournamentTeam, teams)
	for i := range seq {
		seq[i] = models.TournamentTeam{ID: uuid.New(), Name: "Team", Seed: i + 1, Region: "East"}
	}
	sched := schedule.Schedule{
		StartAt:             start,
		SecondsPerTeam:      30,
		SecondsBetweenTeams: 10,
		Teams:               seq,
	}
	settings := models.AuctionSettings{
		StartAt:             start,
		SecondsPerTeam:      30,
		SecondsBetweenTeams: 10,
		SecondsAfterBid:     5,
		MinimumBid:          10,
		SpendingCap:         capAmount,
	}
	members := []models.Participant{
		{ID: alice, DisplayName: "Alice"},
		{ID: bob, DisplayName: "Bob"},
	}
	return sched, settings, members, start
}

func spentEqualsPrices(snap *session.Snapshot) (spent, prices float64) {
	for _, p := range snap.Participants {
		spent += p.TotalSpent
	}
	for _, teams := range snap.AwardedTeams {
		for _, t := range teams {
			prices += t.Price
		}
	}
	return spent, prices
}

func TestPlaceBid(t *testing.T) {
	Convey("Given an active session with no spending cap", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		leagueID := uuid.New()
		s := session.New(leagueID, sched, settings, members, start)
		now := start.Add(2 * time.Second)

		Convey("A bid above the current bid is accepted", func() {
			rec, err := s.PlaceBid(alice, 50, now)
			So(err, ShouldBeNil)
			So(rec.Amount, ShouldEqual, 50)

			snap := s.Snapshot(now)
			So(snap.CurrentBid, ShouldEqual, 50)
			So(*snap.HighBidderID, ShouldEqual, alice)
			So(snap.BidHistory, ShouldHaveLength, 1)

			Convey("and a higher counter-bid replaces the leader", func() {
				_, err := s.PlaceBid(bob, 60, now.Add(time.Second))
				So(err, ShouldBeNil)

				snap := s.Snapshot(now.Add(time.Second))
				So(snap.CurrentBid, ShouldEqual, 60)
				So(*snap.HighBidderID, ShouldEqual, bob)

				Convey("with history kept most-recent-first", func() {
					So(snap.BidHistory[0].BidderID, ShouldEqual, bob)
					So(snap.BidHistory[1].BidderID, ShouldEqual, alice)
				})
			})
		})

		Convey("A bid at or below the current bid is rejected without mutation", func() {
			_, err := s.PlaceBid(alice, 50, now)
			So(err, ShouldBeNil)
			before := s.Snapshot(now)

			_, err = s.PlaceBid(bob, 40, now)
			So(err, ShouldEqual, session.ErrBidTooLow)
			_, err = s.PlaceBid(bob, 50, now)
			So(err, ShouldEqual, session.ErrBidTooLow)

			after := s.Snapshot(now)
			So(after.CurrentBid, ShouldEqual, before.CurrentBid)
			So(*after.HighBidderID, ShouldEqual, *before.HighBidderID)
			So(after.BidHistory, ShouldResemble, before.BidHistory)
		})

		Convey("A bid from a non-member is rejected", func() {
			_, err := s.PlaceBid(uuid.New(), 50, now)
			So(err, ShouldEqual, session.ErrUnknownParticipant)
		})

		Convey("A bid during the buffer between teams is rejected", func() {
			So(s.AdvanceTeam(start.Add(30*time.Second)).Completed, ShouldBeFalse)
			_, err := s.PlaceBid(alice, 50, start.Add(32*time.Second))
			So(err, ShouldEqual, session.ErrAuctionNotActive)

			Convey("but accepted once the next window opens", func() {
				_, err := s.PlaceBid(alice, 50, start.Add(41*time.Second))
				So(err, ShouldBeNil)
			})
		})

		Convey("A bid while paused is rejected", func() {
			So(s.Pause(now), ShouldBeTrue)
			_, err := s.PlaceBid(alice, 50, now)
			So(err, ShouldEqual, session.ErrAuctionNotActive)
		})
	})

	Convey("Given a session with a $100 spending cap", t, func() {
		cap := 100.0
		sched, settings, members, start := fixture(&cap, 3)
		s := session.New(uuid.New(), sched, settings, members, start)
		now := start.Add(time.Second)

		Convey("Participants start with the full cap as remaining budget", func() {
			p, ok := s.Participant(alice)
			So(ok, ShouldBeTrue)
			So(*p.RemainingBudget, ShouldEqual, 100)
		})

		Convey("A bid above remaining budget is rejected", func() {
			_, err := s.PlaceBid(alice, 70, now)
			So(err, ShouldBeNil)
			s.AdvanceTeam(start.Add(30 * time.Second))
			// Alice has $30 left.
			_, err = s.PlaceBid(alice, 50, start.Add(45*time.Second))
			So(err, ShouldEqual, session.ErrExceedsBudget)

			_, err = s.PlaceBid(alice, 30, start.Add(45*time.Second))
			So(err, ShouldBeNil)
		})
	})
}

func TestBidExtendsDeadline(t *testing.T) {
	Convey("Given a session whose window is nearly over", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		s := session.New(uuid.New(), sched, settings, members, start)
		now := start.Add(28 * time.Second) // 2s left of a 30s window

		Convey("An accepted bid pushes the close out to the grace period", func() {
			before := s.SecondsRemaining(now)
			So(before, ShouldEqual, 2)

			_, err := s.PlaceBid(alice, 50, now)
			So(err, ShouldBeNil)
			So(s.SecondsRemaining(now), ShouldEqual, settings.SecondsAfterBid)
			So(s.Deadline(), ShouldEqual, now.Add(5*time.Second))
		})

		Convey("An accepted bid never pulls the close in", func() {
			early := start.Add(3 * time.Second)
			deadline := s.Deadline()
			_, err := s.PlaceBid(alice, 50, early)
			So(err, ShouldBeNil)
			So(s.Deadline(), ShouldEqual, deadline)
		})
	})
}

func TestAdvanceTeam(t *testing.T) {
	Convey("Given a 2-team session", t, func() {
		sched, settings, members, start := fixture(nil, 2)
		s := session.New(uuid.New(), sched, settings, members, start)

		Convey("When the window closes with a high bidder", func() {
			_, err := s.PlaceBid(alice, 55, start.Add(5*time.Second))
			So(err, ShouldBeNil)
			out := s.AdvanceTeam(start.Add(30 * time.Second))

			Convey("The team is awarded at the closing price", func() {
				So(out.Awarded, ShouldNotBeNil)
				So(out.WinnerID, ShouldEqual, alice)
				So(out.Awarded.Price, ShouldEqual, 55)
				So(out.Completed, ShouldBeFalse)
			})

			Convey("The winner's ledger is debited and credited", func() {
				p, _ := s.Participant(alice)
				So(p.TotalSpent, ShouldEqual, 55)
				So(p.TeamsWon, ShouldEqual, 1)
			})

			Convey("Bid state resets for the next team", func() {
				snap := s.Snapshot(start.Add(31 * time.Second))
				So(snap.CurrentTeamIndex, ShouldEqual, 1)
				So(snap.CurrentBid, ShouldEqual, settings.MinimumBid)
				So(snap.HighBidderID, ShouldBeNil)
				So(snap.BidHistory, ShouldBeEmpty)
			})

			Convey("Total spent equals total awarded prices", func() {
				spent, prices := spentEqualsPrices(s.Snapshot(start.Add(31 * time.Second)))
				So(spent, ShouldEqual, prices)
			})

			Convey("Closing the last window completes the auction", func() {
				_, err := s.PlaceBid(bob, 20, start.Add(45*time.Second))
				So(err, ShouldBeNil)
				out := s.AdvanceTeam(start.Add(70 * time.Second))
				So(out.Completed, ShouldBeTrue)
				So(s.Status(), ShouldEqual, session.StatusCompleted)

				spent, prices := spentEqualsPrices(s.Snapshot(start.Add(70 * time.Second)))
				So(spent, ShouldEqual, prices)
				So(spent, ShouldEqual, 75)
			})
		})

		Convey("When the window closes with no bids the team goes unsold", func() {
			out := s.AdvanceTeam(start.Add(30 * time.Second))
			So(out.Awarded, ShouldBeNil)

			snap := s.Snapshot(start.Add(31 * time.Second))
			So(snap.UnsoldTeamIDs, ShouldResemble, []uuid.UUID{out.Team.ID})
			So(snap.AwardedTeams, ShouldBeEmpty)

			spent, prices := spentEqualsPrices(snap)
			So(spent, ShouldEqual, 0)
			So(prices, ShouldEqual, 0)
		})
	})
}

func TestPauseResume(t *testing.T) {
	Convey("Given an active session", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		s := session.New(uuid.New(), sched, settings, members, start)
		now := start.Add(10 * time.Second)

		Convey("Pause freezes the countdown where it stood", func() {
			So(s.Pause(now), ShouldBeTrue)
			So(s.Status(), ShouldEqual, session.StatusPaused)
			So(s.SecondsRemaining(now.Add(time.Hour)), ShouldEqual, 20)

			Convey("Resume restarts it with the frozen remainder", func() {
				later := now.Add(5 * time.Minute)
				So(s.Resume(later), ShouldBeTrue)
				So(s.Status(), ShouldEqual, session.StatusActive)
				So(s.SecondsRemaining(later), ShouldEqual, 20)
			})
		})

		Convey("Pause is a no-op when already paused", func() {
			So(s.Pause(now), ShouldBeTrue)
			So(s.Pause(now), ShouldBeFalse)
		})

		Convey("Resume is a no-op when not paused", func() {
			So(s.Resume(now), ShouldBeFalse)
		})
	})
}
