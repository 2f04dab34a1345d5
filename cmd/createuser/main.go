package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/angelmondragon/lostfound-backend/internal/users"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
	"github.com/angelmondragon/lostfound-backend/pkg/db"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/security"
	"github.com/joho/godotenv"
)

const (
	tempPasswordLength   = 16
	sqliteUsernameColumn = "users.username"
)

var errUsernameTaken = errors.New("username already exists")

type userCreator interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type options struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Staff     bool
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "createuser"})

	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.Username, "username", "", "login name (required)")
	flag.StringVar(&opts.Email, "email", "", "contact email")
	flag.StringVar(&opts.FirstName, "first-name", "", "first name")
	flag.StringVar(&opts.LastName, "last-name", "", "last name")
	flag.StringVar(&opts.Password, "password", "", "password; a temporary one is generated when empty")
	flag.BoolVar(&opts.Staff, "staff", false, "grant back-office access")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	user, password, err := createUser(ctx, users.NewRepository(dbClient.DB()), cfg.Password, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "createuser: %v\n", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{"username": user.Username, "is_staff": user.IsStaff})
	ctx = logg.WithUserID(ctx, user.ID.String())
	logg.Info(ctx, "user created")
	if opts.Password == "" {
		fmt.Println("temporary password:", password)
	}
}

// createUser hashes the password and inserts the account. It returns the
// plaintext password so a generated one can be shown once.
func createUser(ctx context.Context, repo userCreator, pwCfg config.PasswordConfig, opts options) (*models.User, string, error) {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return nil, "", errors.New("-username is required")
	}

	password := opts.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, "", fmt.Errorf("generate password: %w", err)
		}
		password = generated
	}

	hash, err := security.HashPassword(password, pwCfg)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := repo.Create(ctx, users.CreateUserDTO{
		Username:     username,
		Email:        opts.Email,
		PasswordHash: hash,
		FirstName:    opts.FirstName,
		LastName:     opts.LastName,
		IsStaff:      opts.Staff,
	})
	if err != nil {
		if db.IsUniqueViolation(err, users.UsernameConstraint) || db.IsUniqueViolation(err, sqliteUsernameColumn) {
			return nil, "", fmt.Errorf("%w: %s", errUsernameTaken, username)
		}
		return nil, "", fmt.Errorf("insert user: %w", err)
	}
	return user, password, nil
}
