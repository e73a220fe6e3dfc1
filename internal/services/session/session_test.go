package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aliasgame/internal/dependencies/mocks"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/room"
	"github.com/mcoot/aliasgame/internal/services/words"
	"github.com/mcoot/aliasgame/internal/storage"
	"github.com/mcoot/aliasgame/internal/storage/memory"
	"github.com/mcoot/aliasgame/internal/testutil"
)

type SessionSuite struct {
	suite.Suite
	ctx     context.Context
	storage storage.Storage
	codes   *mocks.MockRandom
	rooms   *room.Service
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.codes = mocks.NewMockRandom()
	s.rooms = room.New(s.storage, s.codes, mocks.NewMockClock(time.Now()), testutil.NopLogger())
}

// newSession builds a session with its own clock; rooms may be nil for local-only
func (s *SessionSuite) newSession(rooms *room.Service) (*Session, *mocks.MockClock) {
	source, err := words.New(mocks.NewMockRandom())
	s.Require().NoError(err)

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	sess := New(Config{
		Words:  source,
		Rooms:  rooms,
		Clock:  clk,
		Logger: testutil.NopLogger(),
	})
	s.T().Cleanup(sess.Close)
	return sess, clk
}

// openLobby creates a room with the given code and puts the session in its lobby
func (s *SessionSuite) openLobby(sess *Session, code int) *model.Room {
	s.codes.QueueIntn(code)
	s.Require().NoError(sess.GoOnline())
	created, err := sess.CreateRoom(s.ctx)
	s.Require().NoError(err)
	return created
}

func (s *SessionSuite) TestStartsOnHome() {
	sess, _ := s.newSession(nil)

	view := sess.View()
	s.Equal(model.ScreenHome, view.Screen)
	s.Equal(model.DefaultGameSettings(), view.Settings)
	s.False(view.OnlineEnabled)
	s.Nil(view.Room)
	s.Empty(view.Banner)
}

func (s *SessionSuite) TestGoOnlineWithoutBackend() {
	sess, _ := s.newSession(nil)

	err := sess.GoOnline()
	s.ErrorIs(err, model.ErrOnlineDisabled)
	s.Equal(model.ScreenHome, sess.Screen())
}

func (s *SessionSuite) TestTransitionTable() {
	s.True(CanTransition(model.ScreenHome, model.ScreenOnline))
	s.True(CanTransition(model.ScreenHome, model.ScreenPlaying))
	s.True(CanTransition(model.ScreenOnline, model.ScreenLobby))
	s.True(CanTransition(model.ScreenLobby, model.ScreenPlaying))
	s.True(CanTransition(model.ScreenPlaying, model.ScreenHome))

	s.False(CanTransition(model.ScreenHome, model.ScreenLobby))
	s.False(CanTransition(model.ScreenOnline, model.ScreenPlaying))
	s.False(CanTransition(model.ScreenPlaying, model.ScreenLobby))
	s.False(CanTransition(model.ScreenPlaying, model.ScreenOnline))
}

func (s *SessionSuite) TestSetSettings() {
	sess, _ := s.newSession(nil)

	settings := model.GameSettings{TimerSeconds: 30, Difficulty: model.DifficultyHard, NumTeams: 3, TargetScore: 10}
	s.Require().NoError(sess.SetSettings(settings))
	s.Equal(settings, sess.View().Settings)

	err := sess.SetSettings(model.GameSettings{TimerSeconds: 31, Difficulty: model.DifficultyEasy, NumTeams: 2})
	s.ErrorIs(err, model.ErrInvalidSettings)
	s.NotEmpty(sess.Banner())
	s.Equal(settings, sess.View().Settings)
}

func (s *SessionSuite) TestLocalGame() {
	sess, clk := s.newSession(nil)

	snapshot, err := sess.StartLocal()
	s.Require().NoError(err)
	s.Equal(model.ScreenPlaying, sess.Screen())
	s.Equal(model.ModeLocal, sess.View().Mode)
	s.Equal("Red", snapshot.Presenter.Team)
	s.Equal(60, snapshot.TimeLeft)
	s.Equal(1, clk.ActiveTickers())

	snapshot, err = sess.MarkCorrect()
	s.Require().NoError(err)
	s.Equal(1, snapshot.Score("Red"))
	s.Equal("Blue", snapshot.Presenter.Team)

	snapshot, err = sess.MarkFoul()
	s.Require().NoError(err)
	s.Equal(0, snapshot.Score("Blue"))
	s.Equal("Red", snapshot.Presenter.Team)

	snapshot, err = sess.MarkSkip()
	s.Require().NoError(err)
	s.Equal(1, snapshot.Score("Red"))
	s.Equal(4, snapshot.State.WordCount)

	final, err := sess.EndGame()
	s.Require().NoError(err)
	s.Equal(1, final.Score("Red"))
	s.Equal(model.ScreenHome, sess.Screen())
	s.Equal(0, clk.ActiveTickers())
	s.False(sess.View().Game.Playing)
}

func (s *SessionSuite) TestCountdownTicksGame() {
	sess, clk := s.newSession(nil)
	_, err := sess.StartLocal()
	s.Require().NoError(err)

	clk.Tick(time.Second)

	s.Eventually(func() bool {
		return sess.View().Game.TimeLeft == 59
	}, time.Second, 5*time.Millisecond)

	select {
	case snapshot := <-sess.GameUpdates():
		s.True(snapshot.Playing)
	case <-time.After(time.Second):
		s.Fail("expected a game update")
	}
}

func (s *SessionSuite) TestActionsNeedARunningGame() {
	sess, _ := s.newSession(nil)

	_, err := sess.MarkCorrect()
	s.ErrorIs(err, model.ErrNotPlaying)
	_, err = sess.MarkSkip()
	s.ErrorIs(err, model.ErrNotPlaying)
	_, err = sess.MarkFoul()
	s.ErrorIs(err, model.ErrNotPlaying)
	_, err = sess.EndGame()
	s.ErrorIs(err, model.ErrNotPlaying)
}

func (s *SessionSuite) TestSettingsLockedWhilePlaying() {
	sess, _ := s.newSession(nil)
	_, err := sess.StartLocal()
	s.Require().NoError(err)

	err = sess.SetSettings(model.DefaultGameSettings())
	s.ErrorIs(err, ErrSettingsLocked)
}

func (s *SessionSuite) TestHomeFromPlayingStopsGame() {
	sess, clk := s.newSession(nil)
	_, err := sess.StartLocal()
	s.Require().NoError(err)

	s.Require().NoError(sess.Home())
	s.Equal(model.ScreenHome, sess.Screen())
	s.Equal(0, clk.ActiveTickers())
	s.Empty(sess.View().Mode)

	s.NoError(sess.Home())
}

func (s *SessionSuite) TestCreateRoomOpensLobby() {
	sess, clk := s.newSession(s.rooms)

	created := s.openLobby(sess, 42)
	s.Equal(model.RoomCode("0042"), created.Code)

	view := sess.View()
	s.Equal(model.ScreenLobby, view.Screen)
	s.Equal(model.ModeOnline, view.Mode)
	s.Require().NotNil(view.Room)
	s.Equal(model.RoomCode("0042"), view.Room.Code)
	s.Equal(1, clk.ActiveTickers())

	s.Require().NoError(sess.Home())
	s.Equal(0, clk.ActiveTickers())
	s.Nil(sess.View().Room)
}

func (s *SessionSuite) TestJoinUnknownRoomKeepsScreen() {
	sess, _ := s.newSession(s.rooms)
	s.Require().NoError(sess.GoOnline())

	_, err := sess.JoinRoom(s.ctx, "9999")
	s.ErrorIs(err, model.ErrRoomNotFound)

	view := sess.View()
	s.Equal(model.ScreenOnline, view.Screen)
	s.Nil(view.Room)
	s.NotEmpty(view.Banner)

	s.Require().NoError(s.storage.InsertRoom(s.ctx, &model.Room{
		Code:     "1234",
		Status:   model.RoomStatusLobby,
		Settings: model.DefaultGameSettings(),
	}))
	joined, err := sess.JoinRoom(s.ctx, " 1234 ")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("1234"), joined.Code)
	s.Equal(model.ScreenLobby, sess.Screen())
	s.Empty(sess.Banner())
}

func (s *SessionSuite) TestJoinBeforeGoingOnline() {
	sess, _ := s.newSession(s.rooms)

	_, err := sess.JoinRoom(s.ctx, "1234")
	s.ErrorIs(err, model.ErrInvalidTransition)
	s.Equal(model.ScreenHome, sess.Screen())
}

func (s *SessionSuite) TestSubmitPlayerRefreshesRoster() {
	sess, _ := s.newSession(s.rooms)
	s.openLobby(sess, 7)

	_, err := sess.SubmitPlayer(s.ctx, "  ", "Red")
	s.ErrorIs(err, model.ErrMissingName)
	s.NotEmpty(sess.Banner())

	_, err = sess.SubmitPlayer(s.ctx, "Alice", "Purple")
	s.ErrorIs(err, model.ErrUnknownTeam)

	player, err := sess.SubmitPlayer(s.ctx, "Alice", "red")
	s.Require().NoError(err)
	s.Equal("Red", player.Team)
	s.Empty(sess.Banner())

	roster := sess.View().Roster
	s.Require().Len(roster, 1)
	s.Equal("Alice", roster[0].Name)
}

func (s *SessionSuite) TestStartOnlineNeedsTwoPlayers() {
	sess, clk := s.newSession(s.rooms)
	s.openLobby(sess, 1)

	_, err := sess.SubmitPlayer(s.ctx, "Alice", "Red")
	s.Require().NoError(err)

	_, err = sess.StartOnline(s.ctx)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
	s.Equal(model.ScreenLobby, sess.Screen())

	_, err = sess.SubmitPlayer(s.ctx, "Bob", "Blue")
	s.Require().NoError(err)

	snapshot, err := sess.StartOnline(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.ScreenPlaying, sess.Screen())
	s.Equal("Alice", snapshot.Presenter.Name)
	s.Equal(1, clk.ActiveTickers(), "poller stopped, countdown running")

	stored, err := s.storage.GetRoomByCode(s.ctx, "0001")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, stored.Status)

	snapshot, err = sess.MarkCorrect()
	s.Require().NoError(err)
	s.Equal(1, snapshot.Score("Red"))
	s.Equal("Bob", snapshot.Presenter.Name)
}

func (s *SessionSuite) TestLobbyOnlyOffersTheRoomsTeams() {
	sess, _ := s.newSession(s.rooms)
	s.openLobby(sess, 3)

	_, err := sess.SubmitPlayer(s.ctx, "Alice", "Yellow")
	s.ErrorIs(err, model.ErrUnknownTeam)
	_, err = sess.SubmitPlayer(s.ctx, "Bob", "Green")
	s.ErrorIs(err, model.ErrUnknownTeam)
	s.Empty(sess.View().Roster)

	_, err = sess.SubmitPlayer(s.ctx, "Alice", "Red")
	s.Require().NoError(err)
	_, err = sess.SubmitPlayer(s.ctx, "Bob", "Blue")
	s.Require().NoError(err)

	snapshot, err := sess.StartOnline(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]int{"Red": 0, "Blue": 0}, snapshot.State.TeamScores)
}

func (s *SessionSuite) TestHandleRosterUpdateIgnoresOtherRooms() {
	sess, _ := s.newSession(s.rooms)
	s.openLobby(sess, 5)

	sess.HandleRosterUpdate(model.RosterUpdate{
		RoomCode: "9999",
		Players:  []model.Player{{Name: "Mallory", Team: "Red"}},
		Status:   model.RoomStatusPlaying,
	})

	s.Equal(model.ScreenLobby, sess.Screen())
	s.Empty(sess.View().Roster)
}

func (s *SessionSuite) TestFollowsRoomStartedElsewhere() {
	host, _ := s.newSession(s.rooms)
	created := s.openLobby(host, 77)
	_, err := host.SubmitPlayer(s.ctx, "Alice", "Red")
	s.Require().NoError(err)
	_, err = host.SubmitPlayer(s.ctx, "Bob", "Blue")
	s.Require().NoError(err)

	guest, guestClock := s.newSession(s.rooms)
	s.Require().NoError(guest.GoOnline())
	_, err = guest.JoinRoom(s.ctx, string(created.Code))
	s.Require().NoError(err)

	_, err = host.StartOnline(s.ctx)
	s.Require().NoError(err)

	guestClock.Tick(room.PollPeriod)

	var update model.RosterUpdate
	select {
	case update = <-guest.RosterUpdates():
	case <-time.After(2 * time.Second):
		s.FailNow("expected a roster update")
	}
	s.Equal(model.RoomStatusPlaying, update.Status)

	guest.HandleRosterUpdate(update)

	view := guest.View()
	s.Equal(model.ScreenPlaying, view.Screen)
	s.Require().Len(view.Roster, 2)
	s.True(view.Game.Playing)
	s.Equal("Alice", view.Game.Presenter.Name)
}
