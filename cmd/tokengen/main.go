// Command tokengen prints a bearer token for local testing.
//
//	go run ./cmd/tokengen -role ADMIN -user 1
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/chiragcj27/chariot-sub001/internal/middleware"
	"github.com/chiragcj27/chariot-sub001/internal/utils"
)

func main() {
	_ = godotenv.Load()

	user := flag.Uint64("user", 1, "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleAdmin, "ADMIN or SELLER")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *role != middleware.RoleAdmin && *role != middleware.RoleSeller {
		log.Fatalf("unknown role %q", *role)
	}
	tok, err := utils.NewAccessToken(secret, *user, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
