package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"chatserver-backend/internal/database"
	"chatserver-backend/internal/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := &models.ConfigFile{
		SelfContained: true,
		DatabaseURL:   ":memory:",
	}

	db, err := database.Setup(cfg)
	if err != nil {
		t.Fatalf("setting up test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, repo *UserRepository, name string) *models.User {
	t.Helper()

	user, err := repo.Create(context.Background(), models.NewUser{
		Username:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}

	return user
}

func createTestServer(t *testing.T, repo *ServerRepository, name string, ownerID int64) *models.Server {
	t.Helper()

	server, err := repo.Create(context.Background(), models.NewServer{
		ServerName:  name,
		OwnerUserID: ownerID,
	})
	if err != nil {
		t.Fatalf("creating server %s: %v", name, err)
	}

	return server
}

func createTestChannel(t *testing.T, repo *ChannelRepository, serverID int64, name string) *models.Channel {
	t.Helper()

	channel, err := repo.Create(context.Background(), models.NewChannel{
		ServerID: &serverID,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("creating channel %s: %v", name, err)
	}

	return channel
}
