// Command admin provides account management utilities for operators.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"talents/internal/cache"
	"talents/internal/config"
	"talents/internal/database"
	"talents/internal/models"
	"talents/internal/notifications"
	"talents/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin set-role <user_id> <role>                  - Change a user's role")
	fmt.Println("  go run ./cmd/admin set-subscription <user_id> <status> [plan]  - Write a subscription status")
	fmt.Println("  go run ./cmd/admin list-admins                                 - List all admins")
	fmt.Println("  go run ./cmd/admin token <user_id> [ttl]                       - Mint a bearer token (non-production)")
	fmt.Println("  go run ./cmd/admin watch <user_id>                             - Print a user's live notifications")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "set-role":
		requireArgs(4)
		db := connect(cfg)
		if err := setRole(ctx, repository.NewUserRepository(db), parseUserID(os.Args[2]), os.Args[3]); err != nil {
			log.Fatalf("Failed to set role: %v", err)
		}

	case "set-subscription":
		requireArgs(4)
		plan := ""
		if len(os.Args) > 4 {
			plan = os.Args[4]
		}
		db := connect(cfg)
		if err := setSubscription(ctx, repository.NewUserRepository(db), parseUserID(os.Args[2]), os.Args[3], plan); err != nil {
			log.Fatalf("Failed to set subscription: %v", err)
		}

	case "list-admins":
		listAdmins(connect(cfg))

	case "token":
		requireArgs(3)
		ttl := time.Hour
		if len(os.Args) > 3 {
			if ttl, err = time.ParseDuration(os.Args[3]); err != nil {
				log.Fatalf("Invalid ttl %q: %v", os.Args[3], err)
			}
		}
		if cfg.IsProduction() {
			log.Fatal("Refusing to mint tokens in production")
		}
		token, err := mintToken(cfg.JWTSecret, parseUserID(os.Args[2]), ttl)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		fmt.Println(token)

	case "watch":
		requireArgs(3)
		watch(cfg, parseUserID(os.Args[2]))

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		printUsage()
		os.Exit(1)
	}
}

func parseUserID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user id %q", raw)
	}
	return uint(id)
}

func connect(cfg *config.Config) *gorm.DB {
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func setRole(ctx context.Context, users repository.UserRepository, userID uint, raw string) error {
	role := models.ParseRole(raw)
	if string(role) != raw {
		return fmt.Errorf("unknown role %q", raw)
	}
	if err := users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	fmt.Printf("User %d is now %s\n", userID, role)
	return nil
}

func setSubscription(ctx context.Context, users repository.UserRepository, userID uint, raw, plan string) error {
	role, err := users.GetRole(ctx, userID)
	if err != nil {
		return err
	}
	if !role.IsSubscriber() {
		return fmt.Errorf("user %d is a %s; only professional and company accounts hold subscriptions", userID, role)
	}

	status := models.ParseSubscriptionStatus(raw)
	if !status.Known() {
		return fmt.Errorf("unknown subscription status %q", raw)
	}
	if err := users.UpsertSubscription(ctx, &models.Subscription{UserID: userID, Status: status, Plan: plan}); err != nil {
		return err
	}
	fmt.Printf("User %d subscription is now %s\n", userID, status)
	return nil
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("Current admins:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
}

func mintToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func watch(cfg *config.Config, userID uint) {
	rdb := cache.InitRedis(cfg.RedisURL)
	if rdb == nil {
		log.Fatal("Redis is unavailable; nothing to watch")
	}
	defer func() { _ = rdb.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := notifications.NewNotifier(rdb)
	err := n.StartUserSubscriber(ctx, userID, func(channel, payload string) {
		fmt.Printf("[%s] %s\n", channel, payload)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", notifications.UserChannel(userID))
	<-ctx.Done()
}
