package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialnet/pkg/cache"
	"socialnet/pkg/config"
	"socialnet/pkg/database"
	"socialnet/pkg/jwt"
	"socialnet/pkg/logger"
	"socialnet/pkg/models"
	"socialnet/pkg/s3"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seeder struct {
	db          *gorm.DB
	s3Client    *s3.Client
	redisClient *redis.Client
	jwtService  *jwt.Service
	httpClient  *http.Client
	log         *logger.Logger
}

func main() {
	var withMedia bool
	flag.BoolVar(&withMedia, "media", false, "Attach a cat picture from CATAAS to the first publication of every user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s := &seeder{
		db:         db,
		jwtService: jwt.NewService(cfg.JWTSecret),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}

	if withMedia {
		s.s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (follow cache will not be invalidated)", err)
	} else {
		s.redisClient = redisClient
	}

	if err := s.seedDatabase(); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func (s *seeder) seedDatabase() error {
	testUsers := []struct {
		name     string
		lastName string
		nick     string
		email    string
		password string
	}{
		{"Alice", "Liddell", "alice", "alice@test.com", "password123"},
		{"Bob", "Builder", "bob", "bob@test.com", "password123"},
		{"Charlie", "Brown", "charlie", "charlie@test.com", "password123"},
		{"Diana", "Prince", "diana", "diana@test.com", "password123"},
		{"Eve", "Moneypenny", "eve", "eve@test.com", "password123"},
	}

	users := make([]*models.User, 0, len(testUsers))

	for _, userData := range testUsers {
		var existingUser models.User
		result := s.db.Where("email = ? OR nick = ?", userData.email, userData.nick).First(&existingUser)
		if result.Error == nil {
			s.log.Info("User %s already exists, skipping", userData.nick)
			users = append(users, &existingUser)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &models.User{
			Name:     userData.name,
			LastName: userData.lastName,
			Nick:     userData.nick,
			Email:    userData.email,
			Password: string(hashedPassword),
			Role:     "role_user",
		}
		if err := s.db.Create(user).Error; err != nil {
			s.log.Error("Failed to create user %s: %v", user.Nick, err)
			continue
		}

		s.log.Info("Created user: %s (%s)", user.Nick, user.Email)
		users = append(users, user)

		postsCount := 3 + (len(users) % 3)
		s.log.Info("Creating %d publications for user %s", postsCount, user.Nick)
		for i := 0; i < postsCount; i++ {
			if err := s.createPublication(user, i); err != nil {
				s.log.Error("Failed to create publication %d for user %s: %v", i+1, user.Nick, err)
			}
		}
	}

	// Everyone follows the next two users, so every feed has content.
	for i, user := range users {
		for step := 1; step <= 2 && len(users) > step; step++ {
			followed := users[(i+step)%len(users)]

			var existingFollow models.Follow
			result := s.db.Where("user_id = ? AND followed_id = ?", user.ID, followed.ID).First(&existingFollow)
			if result.Error == nil {
				continue
			}

			follow := &models.Follow{UserID: user.ID, FollowedID: followed.ID}
			if err := s.db.Create(follow).Error; err != nil {
				s.log.Error("Failed to create follow %s -> %s: %v", user.Nick, followed.Nick, err)
				continue
			}
		}
		s.invalidateFollowCache(user.ID)
	}
	s.log.Info("Created test follows")

	for _, user := range users {
		token, err := s.jwtService.GenerateToken(user.ID, user.Role)
		if err != nil {
			return fmt.Errorf("failed to generate token for %s: %w", user.Nick, err)
		}
		fmt.Printf("%-8s %s  Bearer %s\n", user.Nick, user.ID, token)
	}

	return nil
}

func (s *seeder) createPublication(user *models.User, index int) error {
	publication := &models.Publication{
		UserID: user.ID,
		Text:   fmt.Sprintf("Publication #%d by %s", index+1, user.Nick),
	}

	if index == 0 && s.s3Client != nil {
		file, err := s.uploadCatImage(user, index)
		if err != nil {
			s.log.Warn("Skipping media for %s: %v", user.Nick, err)
		} else {
			publication.File = file
		}
	}

	if err := s.db.Create(publication).Error; err != nil {
		return fmt.Errorf("failed to create publication: %w", err)
	}

	s.log.Info("Created publication %s by %s", publication.ID, user.Nick)
	// Keep created_at distinct so seeded timelines have a stable order.
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (s *seeder) uploadCatImage(user *models.User, index int) (string, error) {
	cataasURL := fmt.Sprintf("https://cataas.com/cat/says/Hello from %s", user.Nick)

	s.log.Info("Fetching cat image from %s", cataasURL)
	resp, err := s.httpClient.Get(cataasURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch cat image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cataas API returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) == 0 {
		return "", fmt.Errorf("received empty image data")
	}

	fileKey := fmt.Sprintf("publications/seed/%s_%d.jpg", user.ID, index)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	imageURL, err := s.s3Client.UploadFile(ctx, fileKey, bytes.NewReader(imageData), "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	s.log.Info("Image uploaded successfully: %s", imageURL)
	return imageURL, nil
}

func (s *seeder) invalidateFollowCache(userID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(context.Background(), "follows:"+userID).Err(); err != nil {
		s.log.Warn("Failed to invalidate follow cache for %s: %v", userID, err)
	}
}
