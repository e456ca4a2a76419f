// Command token mints bearer tokens for the admin API and hashes the admin
// super password for ADMIN_SUPERPASSWORDHASH.
//
//	token -sub 65f0c2... -email ops@example.org -role admin -ttl 12h
//	token -role system -sub donation-service -ttl 8760h
//	token -hash 'the super password'
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	sub := flag.String("sub", "", "token subject (admin user id, or a service name for role=system)")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", models.RoleAdmin, "role claim: admin or system")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	hash := flag.String("hash", "", "print the bcrypt hash of this password and exit")
	flag.Parse()

	if *hash != "" {
		h, err := utils.HashPassword(*hash)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to hash password")
		}
		fmt.Println(h)
		return
	}

	if *role != models.RoleAdmin && *role != models.RoleSystem {
		logrus.WithField("role", *role).Fatal("Unknown role")
	}
	if *sub == "" {
		logrus.Fatal("-sub is required")
	}

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}
	cfg, err := config.Load(".")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	token, err := utils.GenerateJWT(*sub, *email, *role, cfg.JWT.Secret, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to sign token")
	}
	fmt.Println(token)
}
