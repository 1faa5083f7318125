// Command token mints an access token for local testing of the hold API.
//
//	go run ./cmd/token -sub alice -role CUSTOMER
//
// The secret defaults to JWT_SECRET, read from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/cinema-seat-hold/internal/utils"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine

	sub := flag.String("sub", "", "token subject; becomes the hold owner")
	role := flag.String("role", utils.RoleCustomer, "CUSTOMER, STAFF or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	flag.Parse()

	r := strings.ToUpper(*role)
	switch {
	case *sub == "":
		fail("-sub is required")
	case *secret == "":
		fail("no secret: set JWT_SECRET or pass -secret")
	case r != utils.RoleCustomer && r != utils.RoleStaff && r != utils.RoleAdmin:
		fail("unknown role " + *role)
	}

	tok, err := utils.NewAccessToken(*secret, *sub, r, *ttl)
	if err != nil {
		fail(err.Error())
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "token:", msg)
	os.Exit(2)
}
