package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aliasgame/internal/dependencies/mocks"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage"
	"github.com/mcoot/aliasgame/internal/storage/memory"
	"github.com/mcoot/aliasgame/internal/testutil"
)

// recordingStorage counts writes and can inject failures
type recordingStorage struct {
	storage.Storage

	mu          sync.Mutex
	roomInserts int
	playerAdds  int
	failWith    error

	// listEntered and listGate hold roster fetches when set,
	// listDone then reports how the held fetch ended
	listEntered chan struct{}
	listGate    chan struct{}
	listDone    chan error
}

func (r *recordingStorage) InsertRoom(ctx context.Context, room *model.Room) error {
	r.mu.Lock()
	r.roomInserts++
	fail := r.failWith
	r.mu.Unlock()
	if fail != nil {
		return fail
	}
	return r.Storage.InsertRoom(ctx, room)
}

func (r *recordingStorage) InsertPlayer(ctx context.Context, player model.Player) (*model.Player, error) {
	r.mu.Lock()
	r.playerAdds++
	fail := r.failWith
	r.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return r.Storage.InsertPlayer(ctx, player)
}

func (r *recordingStorage) ListPlayersByRoom(ctx context.Context, code model.RoomCode) ([]model.Player, error) {
	r.mu.Lock()
	fail := r.failWith
	entered, gate, done := r.listEntered, r.listGate, r.listDone
	r.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	if gate != nil {
		entered <- struct{}{}
		var err error
		select {
		case <-gate:
		case <-ctx.Done():
			err = ctx.Err()
		}
		done <- err
		if err != nil {
			return nil, err
		}
	}
	return r.Storage.ListPlayersByRoom(ctx, code)
}

type ServiceSuite struct {
	suite.Suite
	storage *recordingStorage
	random  *mocks.MockRandom
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = &recordingStorage{Storage: memory.New()}
	s.random = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.random, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createRoom(code int) *model.Room {
	s.random.QueueIntn(code)
	room, err := s.service.CreateRoom(s.ctx, model.DefaultGameSettings())
	s.Require().NoError(err)
	return room
}

// CreateRoom tests

func (s *ServiceSuite) TestCreateRoomPadsCode() {
	room := s.createRoom(7)

	s.Equal(model.RoomCode("0007"), room.Code)
	s.Equal(model.RoomStatusLobby, room.Status)
	s.Equal(model.DefaultGameSettings(), room.Settings)

	stored, err := s.storage.GetRoomByCode(s.ctx, "0007")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusLobby, stored.Status)
}

func (s *ServiceSuite) TestCreateRoomRetriesOnCollision() {
	s.createRoom(1234)

	s.random.QueueIntn(1234, 1234, 42)
	room, err := s.service.CreateRoom(s.ctx, model.DefaultGameSettings())
	s.Require().NoError(err)
	s.Equal(model.RoomCode("0042"), room.Code)
	s.Equal(4, s.storage.roomInserts)
}

func (s *ServiceSuite) TestCreateRoomGivesUpAfterMaxAttempts() {
	s.createRoom(0)

	// Empty queue keeps returning 0, which is taken
	_, err := s.service.CreateRoom(s.ctx, model.DefaultGameSettings())
	s.ErrorIs(err, model.ErrBackend)
	s.Equal(1+MaxCodeAttempts, s.storage.roomInserts)
}

func (s *ServiceSuite) TestCreateRoomBackendFailure() {
	s.storage.failWith = errors.New("connection refused")

	_, err := s.service.CreateRoom(s.ctx, model.DefaultGameSettings())
	s.ErrorIs(err, model.ErrBackend)
	s.Equal(1, s.storage.roomInserts)
}

func (s *ServiceSuite) TestCreateRoomValidatesSettings() {
	settings := model.DefaultGameSettings()
	settings.NumTeams = 9

	_, err := s.service.CreateRoom(s.ctx, settings)
	s.ErrorIs(err, model.ErrValidation)
	s.Equal(0, s.storage.roomInserts)
}

// JoinRoom tests

func (s *ServiceSuite) TestJoinRoomReturnsSettings() {
	settings := model.GameSettings{TimerSeconds: 90, Difficulty: model.DifficultyHard, NumTeams: 3, TargetScore: 30}
	s.random.QueueIntn(55)
	_, err := s.service.CreateRoom(s.ctx, settings)
	s.Require().NoError(err)

	room, err := s.service.JoinRoom(s.ctx, " 0055 ")
	s.Require().NoError(err)
	s.Equal(settings, room.Settings)
}

func (s *ServiceSuite) TestJoinUnknownRoom() {
	_, err := s.service.JoinRoom(s.ctx, "9999")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestJoinMalformedCode() {
	for _, code := range []model.RoomCode{"", "12", "abcd", "12345"} {
		_, err := s.service.JoinRoom(s.ctx, code)
		s.ErrorIs(err, model.ErrNotFound, "code %q", code)
	}
}

// SubmitPlayer tests

func (s *ServiceSuite) TestSubmitPlayer() {
	room := s.createRoom(1)

	player, err := s.service.SubmitPlayer(s.ctx, room, "  Alice ", "Red")
	s.Require().NoError(err)
	s.NotEmpty(player.ID)
	s.Equal("Alice", player.Name)
	s.Equal("Red", player.Team)
	s.Equal(0, player.Score)
	s.Equal(room.Code, player.RoomCode)
}

func (s *ServiceSuite) TestSubmitPlayerValidationMakesNoBackendCall() {
	room := s.createRoom(1)

	_, err := s.service.SubmitPlayer(s.ctx, room, "   ", "Red")
	s.ErrorIs(err, model.ErrMissingName)

	_, err = s.service.SubmitPlayer(s.ctx, room, "Alice", "")
	s.ErrorIs(err, model.ErrMissingTeam)

	_, err = s.service.SubmitPlayer(s.ctx, room, "Alice", "Purple")
	s.ErrorIs(err, model.ErrUnknownTeam)
	s.ErrorIs(err, model.ErrValidation)

	s.Equal(0, s.storage.playerAdds)
}

func (s *ServiceSuite) TestSubmitPlayerOnlyJoinsTeamsInPlay() {
	room := s.createRoom(1)

	for _, team := range []string{"Green", "Yellow"} {
		_, err := s.service.SubmitPlayer(s.ctx, room, "Alice", team)
		s.ErrorIs(err, model.ErrUnknownTeam, "team %s", team)
	}
	s.Equal(0, s.storage.playerAdds)

	settings := model.DefaultGameSettings()
	settings.NumTeams = 4
	s.random.QueueIntn(2)
	big, err := s.service.CreateRoom(s.ctx, settings)
	s.Require().NoError(err)

	player, err := s.service.SubmitPlayer(s.ctx, big, "Alice", "yellow")
	s.Require().NoError(err)
	s.Equal("Yellow", player.Team)
}

func (s *ServiceSuite) TestSubmitPlayerUnknownRoom() {
	_, err := s.service.SubmitPlayer(s.ctx, &model.Room{Code: "4321", Settings: model.DefaultGameSettings()}, "Alice", "Red")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestSubmitPlayerBackendFailure() {
	room := s.createRoom(1)
	s.storage.failWith = errors.New("timeout")

	_, err := s.service.SubmitPlayer(s.ctx, room, "Alice", "Red")
	s.ErrorIs(err, model.ErrBackend)
}

// FetchRoster tests

func (s *ServiceSuite) TestFetchRosterInJoinOrder() {
	room := s.createRoom(1)
	_, _ = s.service.SubmitPlayer(s.ctx, room, "Alice", "Red")
	_, _ = s.service.SubmitPlayer(s.ctx, room, "Bob", "Blue")

	roster, err := s.service.FetchRoster(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Require().Len(roster, 2)
	s.Equal("Alice", roster[0].Name)
	s.Equal("Bob", roster[1].Name)
}

func (s *ServiceSuite) TestSharedFetchOutlivesCancelledCaller() {
	room := s.createRoom(1)
	_, err := s.service.SubmitPlayer(s.ctx, room, "Alice", "Red")
	s.Require().NoError(err)

	s.storage.mu.Lock()
	s.storage.listEntered = make(chan struct{}, 1)
	s.storage.listGate = make(chan struct{})
	s.storage.listDone = make(chan error, 1)
	s.storage.mu.Unlock()

	callerCtx, cancel := context.WithCancel(s.ctx)
	callerErr := make(chan error, 1)
	go func() {
		_, err := s.service.FetchRoster(callerCtx, room.Code)
		callerErr <- err
	}()
	<-s.storage.listEntered

	cancel()
	select {
	case err := <-callerErr:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.FailNow("cancelled caller did not return")
	}

	// The backend call keeps running for anyone else sharing it
	close(s.storage.listGate)
	select {
	case err := <-s.storage.listDone:
		s.NoError(err)
	case <-time.After(time.Second):
		s.FailNow("shared fetch never finished")
	}

	s.storage.mu.Lock()
	s.storage.listEntered, s.storage.listGate, s.storage.listDone = nil, nil, nil
	s.storage.mu.Unlock()

	roster, err := s.service.FetchRoster(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Len(roster, 1)
}

// StartGame tests

func (s *ServiceSuite) TestStartGameNeedsTwoPlayers() {
	room := s.createRoom(1)
	alice, _ := s.service.SubmitPlayer(s.ctx, room, "Alice", "Red")

	err := s.service.StartGame(s.ctx, room.Code, []model.Player{*alice})
	s.ErrorIs(err, model.ErrInsufficientPlayers)

	stored, _ := s.storage.GetRoomByCode(s.ctx, room.Code)
	s.Equal(model.RoomStatusLobby, stored.Status)
}

func (s *ServiceSuite) TestStartGameSetsPlaying() {
	room := s.createRoom(1)
	_, _ = s.service.SubmitPlayer(s.ctx, room, "Alice", "Red")
	_, _ = s.service.SubmitPlayer(s.ctx, room, "Bob", "Blue")
	roster, _ := s.service.FetchRoster(s.ctx, room.Code)

	err := s.service.StartGame(s.ctx, room.Code, roster)
	s.Require().NoError(err)

	stored, _ := s.storage.GetRoomByCode(s.ctx, room.Code)
	s.Equal(model.RoomStatusPlaying, stored.Status)

	// A second start from another member is harmless
	s.NoError(s.service.StartGame(s.ctx, room.Code, roster))
}

func (s *ServiceSuite) TestStartGameUnknownRoom() {
	err := s.service.StartGame(s.ctx, "8888", []model.Player{{Name: "a"}, {Name: "b"}})
	s.ErrorIs(err, model.ErrRoomNotFound)
}
