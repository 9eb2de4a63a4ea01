package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"finreport/config"
	"finreport/database"
	"finreport/dto"
	"finreport/pkg/crud"
	"finreport/service"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <username> <password> [role...]")
		os.Exit(2)
	}
	username := os.Args[1]
	password := os.Args[2]
	roles := os.Args[3:]

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	users := service.New(db).Users
	user, err := users.Create(context.Background(), dto.UserCreateInput{Username: username, Password: password, Roles: roles})
	if errors.Is(err, crud.ErrAlreadyExists) {
		fmt.Printf("user %s already exists\n", strings.TrimSpace(username))
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%s\n", user.Username, user.ID)
}
