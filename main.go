package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"assessment-service/internal/cache"
	"assessment-service/internal/db"
	"assessment-service/internal/event"
	"assessment-service/internal/handlers"
	"assessment-service/internal/identity"
	"assessment-service/internal/repository"
	"assessment-service/internal/service"
	"assessment-service/internal/session"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	redisURI := os.Getenv("REDIS_URI")
	if redisURI == "" {
		log.Fatal("REDIS_URI is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db.InitMongo(mongoURI)
	redisClient := db.InitRedis(redisURI)

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, submission events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(envOr("CORS_ORIGINS", "http://localhost:3000"), ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database("assessment_service")

	cacheTTL := time.Duration(envInt("HIERARCHY_CACHE_TTL_MINUTES", 15)) * time.Minute
	grace := time.Duration(envInt("SUBMISSION_GRACE_SECONDS", 120)) * time.Second

	hierarchyRepo := repository.NewHierarchyRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	sessionRepo := repository.NewSessionRepository(database)

	hierarchyCache := cache.NewHierarchyCache(redisClient, hierarchyRepo, cacheTTL)
	questionCache := cache.NewQuestionCache(redisClient, questionRepo, cacheTTL)

	tracker := session.NewTracker(sessionRepo, grace)

	var pub service.Publisher
	if publisher != nil {
		pub = publisher
	}
	assessmentService := service.NewAssessmentService(hierarchyCache, questionCache, sessionRepo, tracker, pub)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	contentHandler := handlers.NewContentHandler(hierarchyRepo, questionRepo, hierarchyCache, questionCache)

	resolver := identity.NewResolver(jwtSecret)

	protected := r.Group("/protected/assessment")
	protected.Use(userIDMiddleware(resolver))
	{
		protected.GET("/:id", assessmentHandler.ReadAssessment)
		protected.GET("/:id/save", assessmentHandler.ReadSavePoint)
		protected.POST("/:id/save", assessmentHandler.SaveAssessmentDraft)
		protected.POST("/:id/submit", assessmentHandler.SubmitAssessment)
		protected.GET("/:id/retake-info", assessmentHandler.RetakeAttemptInfo)
	}

	publicAssessment := r.Group("/public/assessment")
	{
		publicAssessment.GET("/question", assessmentHandler.ReadQuestionList)
	}

	internal := r.Group("/internal/assessment")
	{
		internal.POST("/:id/auto-publish", assessmentHandler.AutoPublish)
		internal.PUT("/:id", contentHandler.UpsertHierarchy)
		internal.POST("/question/bulk", contentHandler.BulkUpsertQuestions)
	}

	r.Run(":" + envOr("PORT", "6680"))
}

// userIDMiddleware accepts a gateway-set X-User-ID header or resolves a
// Bearer token, and rejects requests carrying neither.
func userIDMiddleware(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") != "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			userID, err := resolver.ResolveUserID(token)
			if err == nil {
				c.Request.Header.Set("X-User-ID", userID)
				c.Next()
				return
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"code":  "MISSING_USER_ID",
		})
		c.Abort()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
