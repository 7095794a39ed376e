// devtoken выпускает access-токен для локальной проверки REST и gRPC.
//
//	CONFIG_PATH=./config/config.yaml go run ./cmd/devtoken -sub A -name Alice
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cwrk-planet/chat-service/config"
	"github.com/cwrk-planet/chat-service/internal/auth"
)

func main() {
	sub := flag.String("sub", "", "user or employee id")
	name := flag.String("name", "", "display name")
	kind := flag.String("kind", "user", "user|employee")
	ttl := flag.Duration("ttl", 0, "token lifetime, default from config")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	validity := cfg.Auth.TokenTTL
	if *ttl > 0 {
		validity = *ttl
	}
	if validity <= 0 {
		validity = time.Hour
	}

	token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, validity).
		GenerateToken(*sub, *name, *kind)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
