package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chatserver-backend/internal/database"
	"chatserver-backend/internal/handlers"
	"chatserver-backend/internal/models"
	"chatserver-backend/internal/repositories"
)

func setupLogger(cfg *models.ConfigFile) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()

	config.OutputPaths = []string{"stdout"}
	if cfg.LogToFile {
		config.OutputPaths = append(config.OutputPaths, "app.log")
	}

	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func readConfigFile() (*models.ConfigFile, error) {
	var cfg models.ConfigFile

	configFile, err := os.Open("config.json")
	if err != nil {
		return nil, err
	}
	defer configFile.Close()

	bytes, err := io.ReadAll(configFile)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(bytes, &cfg)
	if err != nil {
		return nil, err
	}

	// .env is optional, the environment wins over config.json
	_ = godotenv.Load()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	return &cfg, nil
}

func main() {
	fmt.Println("Reading config file...")
	cfg, err := readConfigFile()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer sugar.Sync()

	fmt.Println("Connecting to database...")
	db, err := database.Setup(cfg)
	if err != nil {
		sugar.Fatal(err)
	}
	defer db.Close()

	userRepo := repositories.NewUserRepository(db)
	serverRepo := repositories.NewServerRepository(db)
	memberRepo := repositories.NewServerMemberRepository(db)
	channelRepo := repositories.NewChannelRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	channelRepo.AttachMessageRepository(messageRepo)
	dmRepo := repositories.NewDirectMessageRepository(db, channelRepo)

	router := handlers.Setup(cfg, sugar, handlers.Repositories{
		Users:    userRepo,
		Servers:  serverRepo,
		Members:  memberRepo,
		Channels: channelRepo,
		Messages: messageRepo,
		Dms:      dmRepo,
	})

	address := fmt.Sprintf("%s:%s", cfg.Address, cfg.Port)
	fmt.Printf("Server is running on http://%s\n", address)

	err = http.ListenAndServe(address, router)
	if err != nil {
		sugar.Fatal(err)
	}
}
