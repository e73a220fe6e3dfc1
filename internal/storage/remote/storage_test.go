package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aliasgame/internal/api"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/storage/memory"
	"github.com/mcoot/aliasgame/internal/testutil"
)

const testKey = "anon-key"

// StorageSuite runs the remote client against a real API router over memory storage
type StorageSuite struct {
	suite.Suite
	server  *httptest.Server
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	router := api.NewRouter(api.RouterConfig{
		Logger:  testutil.NopLogger(),
		Storage: memory.New(),
		APIKey:  testKey,
	})
	s.server = httptest.NewServer(router)
	s.storage = New(s.server.URL+"/", testKey)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	_ = s.storage.Close()
	s.server.Close()
}

func (s *StorageSuite) insertRoom(code model.RoomCode) {
	err := s.storage.InsertRoom(s.ctx, &model.Room{
		Code:     code,
		Status:   model.RoomStatusLobby,
		Settings: model.DefaultGameSettings(),
	})
	s.Require().NoError(err)
}

func (s *StorageSuite) TestHealth() {
	s.NoError(s.storage.Health(s.ctx))
}

func (s *StorageSuite) TestInsertAndGetRoom() {
	s.insertRoom("0042")

	room, err := s.storage.GetRoomByCode(s.ctx, "0042")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("0042"), room.Code)
	s.Equal(model.RoomStatusLobby, room.Status)
	s.Equal(model.DefaultGameSettings(), room.Settings)
}

func (s *StorageSuite) TestDuplicateCodeMapsToCodeTaken() {
	s.insertRoom("1234")

	err := s.storage.InsertRoom(s.ctx, &model.Room{Code: "1234", Status: model.RoomStatusLobby, Settings: model.DefaultGameSettings()})
	s.ErrorIs(err, model.ErrRoomCodeTaken)
}

func (s *StorageSuite) TestNotFoundMapsToRoomNotFound() {
	_, err := s.storage.GetRoomByCode(s.ctx, "9999")
	s.ErrorIs(err, model.ErrRoomNotFound)

	err = s.storage.UpdateRoomStatus(s.ctx, "9999", model.RoomStatusPlaying)
	s.ErrorIs(err, model.ErrRoomNotFound)

	_, err = s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "9999", Name: "Alice", Team: "Red"})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestUpdateRoomStatus() {
	s.insertRoom("0001")

	s.Require().NoError(s.storage.UpdateRoomStatus(s.ctx, "0001", model.RoomStatusPlaying))
	room, _ := s.storage.GetRoomByCode(s.ctx, "0001")
	s.Equal(model.RoomStatusPlaying, room.Status)

	err := s.storage.UpdateRoomStatus(s.ctx, "0001", model.RoomStatusLobby)
	s.ErrorIs(err, model.ErrInvalidStatus)
}

func (s *StorageSuite) TestPlayers() {
	s.insertRoom("0001")

	alice, err := s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "0001", Name: "Alice", Team: "Red"})
	s.Require().NoError(err)
	s.NotEmpty(alice.ID)
	s.Equal(model.RoomCode("0001"), alice.RoomCode)
	_, err = s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "0001", Name: "Bob", Team: "Blue"})
	s.Require().NoError(err)

	players, err := s.storage.ListPlayersByRoom(s.ctx, "0001")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(alice.ID, players[0].ID)
	s.Equal("Bob", players[1].Name)
}

func (s *StorageSuite) TestValidationErrorsKeepCategory() {
	s.insertRoom("0001")

	_, err := s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "0001", Name: "Alice", Team: "Purple"})
	s.ErrorIs(err, model.ErrValidation)
}

func (s *StorageSuite) TestWrongKeyIsRejected() {
	client := New(s.server.URL, "wrong")
	_, err := client.GetRoomByCode(s.ctx, "0001")
	s.Require().Error(err)
	s.Contains(err.Error(), "UNAUTHORIZED")
}

func (s *StorageSuite) TestUnexpectedStatus() {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer broken.Close()

	_, err := New(broken.URL, "").ListPlayersByRoom(s.ctx, "0001")
	s.EqualError(err, "Bad Gateway")
}
