package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"finreport/config"
	"finreport/database"
	"finreport/dto"
	"finreport/service"
)

func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", fmt.Sprintf("new plaintext password (min %d chars)", dto.MinPasswordLength))
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	ctx := context.Background()
	users := service.New(db).Users
	found, err := users.List(ctx, dto.FindManyArgs[dto.UserWhereInput]{Where: dto.UserWhereInput{Username: username}})
	if err != nil {
		log.Fatalf("look up user: %v", err)
	}
	if len(found) == 0 {
		log.Fatalf("user not found: %s", *username)
	}
	if err := users.Update(ctx, found[0].ID, dto.UserUpdateInput{Password: password}); err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for user %s\n", found[0].Username)
}
