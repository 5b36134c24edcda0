package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"davspay.backend/internal/config"
	"davspay.backend/pkg/crypto"
)

var (
	printfFn  = fmt.Printf
	fatalfFn  = log.Fatalf
	loadEnvFn = func() error { return godotenv.Load() }
	loadCfgFn = config.Load
	newHasher = crypto.NewPasswordHasher
)

func resolvePassword(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errors.New("usage: hash-gen <password>")
	}
	return args[0], nil
}

func generateHash(password string, cost int) (string, error) {
	return newHasher(cost).Hash(password)
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	_ = loadEnvFn()
	cfg := loadCfgFn()

	printfFn("Generating hash (cost %d)\n", cfg.Security.BcryptCost)

	hash, err := generateHash(password, cfg.Security.BcryptCost)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
