package session_test

import (
	"testing"
	"time"

	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReconcile(t *testing.T) {
	Convey("Given a session with a live bid on the first team", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		leagueID := uuid.New()
		s := session.New(leagueID, sched, settings, members, start)
		_, err := s.PlaceBid(alice, 50, start.Add(5*time.Second))
		So(err, ShouldBeNil)
		snap := s.Snapshot(start.Add(6 * time.Second))

		Convey("Reconciling within the same window keeps the bid details", func() {
			fresh := session.New(leagueID, sched, settings, members, start.Add(12*time.Second))
			fresh.Reconcile(start.Add(12*time.Second), snap)

			out := fresh.Snapshot(start.Add(12 * time.Second))
			So(out.CurrentTeamIndex, ShouldEqual, 0)
			So(out.CurrentBid, ShouldEqual, 50)
			So(*out.HighBidderID, ShouldEqual, alice)
			So(out.BidHistory, ShouldHaveLength, 1)
		})

		Convey("Reconciling past a team boundary discards stale bid details", func() {
			now := start.Add(45 * time.Second) // second team's window
			fresh := session.New(leagueID, sched, settings, members, now)
			fresh.Reconcile(now, snap)

			out := fresh.Snapshot(now)
			So(out.CurrentTeamIndex, ShouldEqual, 1)
			So(out.CurrentBid, ShouldEqual, settings.MinimumBid)
			So(out.HighBidderID, ShouldBeNil)
			So(out.BidHistory, ShouldBeEmpty)
		})

		Convey("Reconciling twice at the same instant changes nothing", func() {
			now := start.Add(12 * time.Second)
			fresh := session.New(leagueID, sched, settings, members, now)
			fresh.Reconcile(now, snap)
			once := fresh.Snapshot(now)
			fresh.Reconcile(now, snap)
			twice := fresh.Snapshot(now)
			So(twice, ShouldResemble, once)
		})

		Convey("Reconciling past the schedule end completes the session", func() {
			now := start.Add(time.Hour)
			fresh := session.New(leagueID, sched, settings, members, now)
			fresh.Reconcile(now, snap)
			So(fresh.Status(), ShouldEqual, session.StatusCompleted)
		})
	})

	Convey("Given a session whose ledger already has awards", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		leagueID := uuid.New()
		s := session.New(leagueID, sched, settings, members, start)
		_, err := s.PlaceBid(bob, 80, start.Add(3*time.Second))
		So(err, ShouldBeNil)
		s.AdvanceTeam(start.Add(30 * time.Second))
		snap := s.Snapshot(start.Add(31 * time.Second))

		Convey("Reconciliation carries the ledger even when position diverged", func() {
			now := start.Add(90 * time.Second) // third team's window
			fresh := session.New(leagueID, sched, settings, members, now)
			fresh.Reconcile(now, snap)

			out := fresh.Snapshot(now)
			So(out.CurrentTeamIndex, ShouldEqual, 2)
			So(out.AwardedTeams[bob], ShouldHaveLength, 1)
			p := out.Participants[bob]
			So(p.TotalSpent, ShouldEqual, 80)
			So(p.TeamsWon, ShouldEqual, 1)
		})
	})

	Convey("Given a snapshot completed ahead of schedule", t, func() {
		// Skips can close every window long before the schedule would.
		sched, settings, members, start := fixture(nil, 3)
		leagueID := uuid.New()
		s := session.New(leagueID, sched, settings, members, start)
		_, err := s.PlaceBid(bob, 60, start.Add(2*time.Second))
		So(err, ShouldBeNil)
		s.AdvanceTeam(start.Add(3 * time.Second))
		s.AdvanceTeam(start.Add(4 * time.Second))
		s.AdvanceTeam(start.Add(5 * time.Second))
		So(s.Status(), ShouldEqual, session.StatusCompleted)
		snap := s.Snapshot(start.Add(6 * time.Second))

		Convey("Reconciliation never puts awarded teams back on the block", func() {
			// The wall clock still says the first team's window is open.
			now := start.Add(12 * time.Second)
			fresh := session.New(leagueID, sched, settings, members, now)
			fresh.Reconcile(now, snap)

			So(fresh.Status(), ShouldEqual, session.StatusCompleted)
			out := fresh.Snapshot(now)
			So(out.AwardedTeams[bob], ShouldHaveLength, 1)
			So(out.UnsoldTeamIDs, ShouldHaveLength, 2)
			So(out.HighBidderID, ShouldBeNil)
			_, err := fresh.PlaceBid(alice, 90, now)
			So(err, ShouldEqual, session.ErrAuctionNotActive)
		})
	})

	Convey("Given a paused snapshot", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		leagueID := uuid.New()
		s := session.New(leagueID, sched, settings, members, start)
		_, err := s.PlaceBid(alice, 40, start.Add(4*time.Second))
		So(err, ShouldBeNil)
		s.Pause(start.Add(10 * time.Second))
		snap := s.Snapshot(start.Add(10 * time.Second))

		Convey("Reconciliation honors the freeze instead of the wall clock", func() {
			now := start.Add(time.Hour)
			fresh := session.New(leagueID, sched, settings, members, start)
			fresh.Reconcile(now, snap)

			So(fresh.Status(), ShouldEqual, session.StatusPaused)
			So(fresh.SecondsRemaining(now), ShouldEqual, 20)
			out := fresh.Snapshot(now)
			So(out.CurrentBid, ShouldEqual, 40)
			So(*out.HighBidderID, ShouldEqual, alice)
		})
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Restore rebuilds an equivalent session from a snapshot", t, func() {
		sched, settings, members, start := fixture(nil, 3)
		s := session.New(uuid.New(), sched, settings, members, start)
		_, err := s.PlaceBid(alice, 25, start.Add(2*time.Second))
		So(err, ShouldBeNil)
		_, err = s.PlaceBid(bob, 35, start.Add(4*time.Second))
		So(err, ShouldBeNil)

		now := start.Add(6 * time.Second)
		snap := s.Snapshot(now)
		restored := session.Restore(snap, sched, settings)

		So(restored.Snapshot(now), ShouldResemble, snap)
		So(restored.Deadline(), ShouldEqual, s.Deadline())

		Convey("and the restored session keeps accepting bids", func() {
			_, err := restored.PlaceBid(alice, 45, start.Add(8*time.Second))
			So(err, ShouldBeNil)
			So(restored.Snapshot(start.Add(8*time.Second)).CurrentBid, ShouldEqual, 45)
		})
	})
}
