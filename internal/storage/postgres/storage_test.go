package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mcoot/aliasgame/internal/model"
)

// Set ALIAS_POSTGRES_TESTS=1 to run against a throwaway container
const enableEnv = "ALIAS_POSTGRES_TESTS"

type StorageSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	storage   *Storage
	ctx       context.Context
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv(enableEnv) != "1" {
		t.Skipf("set %s=1 to run Postgres tests", enableEnv)
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("alias"),
		tcpostgres.WithUsername("alias"),
		tcpostgres.WithPassword("alias"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.storage, err = New(s.ctx, url)
	s.Require().NoError(err)

	// Migrations are idempotent
	s.Require().NoError(Migrate(s.ctx, url))
}

func (s *StorageSuite) TearDownSuite() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *StorageSuite) SetupTest() {
	_, err := s.storage.pool.Exec(s.ctx, "TRUNCATE players, rooms")
	s.Require().NoError(err)
}

func (s *StorageSuite) insertRoom(code model.RoomCode) {
	err := s.storage.InsertRoom(s.ctx, &model.Room{
		Code:     code,
		Status:   model.RoomStatusLobby,
		Settings: model.DefaultGameSettings(),
	})
	s.Require().NoError(err)
}

func (s *StorageSuite) TestInsertAndGetRoom() {
	s.insertRoom("0042")

	room, err := s.storage.GetRoomByCode(s.ctx, "0042")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("0042"), room.Code)
	s.Equal(model.RoomStatusLobby, room.Status)
	s.Equal(model.DefaultGameSettings(), room.Settings)
}

func (s *StorageSuite) TestDuplicateCode() {
	s.insertRoom("1234")
	err := s.storage.InsertRoom(s.ctx, &model.Room{Code: "1234", Status: model.RoomStatusLobby})
	s.ErrorIs(err, model.ErrRoomCodeTaken)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoomByCode(s.ctx, "9999")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestUpdateRoomStatus() {
	s.insertRoom("0001")

	s.Require().NoError(s.storage.UpdateRoomStatus(s.ctx, "0001", model.RoomStatusPlaying))
	room, _ := s.storage.GetRoomByCode(s.ctx, "0001")
	s.Equal(model.RoomStatusPlaying, room.Status)

	s.ErrorIs(s.storage.UpdateRoomStatus(s.ctx, "0001", model.RoomStatusLobby), model.ErrInvalidStatus)
	s.ErrorIs(s.storage.UpdateRoomStatus(s.ctx, "0404", model.RoomStatusPlaying), model.ErrRoomNotFound)
}

func (s *StorageSuite) TestInsertPlayerRequiresRoom() {
	_, err := s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "0001", Name: "Alice", Team: "Red"})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestPlayersInJoinOrder() {
	s.insertRoom("0001")

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		player, err := s.storage.InsertPlayer(s.ctx, model.Player{RoomCode: "0001", Name: name, Team: "Green"})
		s.Require().NoError(err)
		s.NotEmpty(player.ID)
		s.False(player.JoinedAt.IsZero())
	}

	players, err := s.storage.ListPlayersByRoom(s.ctx, "0001")
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("Alice", players[0].Name)
	s.Equal("Carol", players[2].Name)
	s.Equal(model.RoomCode("0001"), players[0].RoomCode)
}

func (s *StorageSuite) TestListPlayersEmpty() {
	players, err := s.storage.ListPlayersByRoom(s.ctx, "0001")
	s.Require().NoError(err)
	s.Empty(players)
}
