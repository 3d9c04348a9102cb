package main

import (
	"context"
	"log"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/db"
	"assessment-service/internal/event"
	"assessment-service/internal/handlers"
	"assessment-service/internal/locks"
	"assessment-service/internal/middleware"
	"assessment-service/internal/repository"
	"assessment-service/internal/service"
	"assessment-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	mongoClient, err := db.Connect(ctx, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	database := mongoClient.Database(cfg.MongoDB.Database)

	quizRepo := repository.NewQuizRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	submissionRepo := repository.NewSubmissionRepository(database)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	if err := submissionRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure submission indexes: %v", err)
	}
	cancelIndex()

	// Redis lock is a fast path only, the service runs without it.
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	} else {
		log.Println("Redis not configured, attempt locking falls back to database index")
	}
	locker := locks.NewAttemptLocker(redisClient)

	var publisher *event.Publisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		publisher, err = event.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	if cfg.Consul.Address != "" {
		registry, err := discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to create Consul client: %v", err)
		}
		if err := registry.Register(); err != nil {
			log.Fatalf("Failed to register with Consul: %v", err)
		}
		defer registry.Deregister()
	} else {
		log.Println("Consul not configured, skipping service registration")
	}

	attemptService := service.NewAttemptService(quizRepo, questionRepo, submissionRepo, locker)
	quizService := service.NewQuizService(quizRepo, questionRepo)
	questionService := service.NewQuestionService(quizRepo, questionRepo)

	attemptHandler := handlers.NewAttemptHandler(attemptService)
	quizHandler := handlers.NewQuizHandler(quizService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Server.ServiceName})
	})

	// Anonymous callers browse published quizzes only; visibility filtering
	// treats the empty actor as an unenrolled student.
	public := r.Group("/public/quiz")
	{
		public.GET("/", quizHandler.ListQuizzes)
		public.GET("/:id", quizHandler.GetQuiz)
	}

	protected := r.Group("/protected/quiz")
	protected.Use(middleware.RequireActor(cfg.Auth.JWTSecret))
	{
		protected.POST("/", quizHandler.CreateQuiz)
		protected.GET("/", quizHandler.ListQuizzes)
		protected.GET("/:id", quizHandler.GetQuiz)
		protected.PUT("/:id", quizHandler.UpdateQuiz)
		protected.DELETE("/:id", quizHandler.DeleteQuiz)

		protected.GET("/:id/questions", quizHandler.GetQuestionBank)
		protected.POST("/:id/questions", questionHandler.AddQuestion)
		protected.PUT("/:id/questions/:questionId", questionHandler.UpdateQuestion)
		protected.DELETE("/:id/questions/:questionId", questionHandler.DeleteQuestion)
	}

	setupAttemptRoutes(r, attemptHandler, publisher, cfg.Auth.JWTSecret)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func setupAttemptRoutes(r *gin.Engine, attemptHandler *handlers.AttemptHandler, publisher *event.Publisher, jwtSecret string) {
	attempts := r.Group("/protected/quiz/attempts")
	attempts.Use(middleware.RequireActor(jwtSecret))
	{
		attempts.POST("/", func(c *gin.Context) {
			attemptHandler.StartAttempt(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptStarted, gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})

		attempts.POST("/:id/events", func(c *gin.Context) {
			attemptHandler.RecordEvent(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptFlagged, gin.H{
					"submission_id": c.Param("id"),
					"user_id":       c.GetHeader("X-User-ID"),
					"timestamp":     time.Now(),
				})
			}
		})

		attempts.POST("/:id/submit", func(c *gin.Context) {
			attemptHandler.SubmitAttempt(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptSubmitted, gin.H{
					"submission_id": c.Param("id"),
					"user_id":       c.GetHeader("X-User-ID"),
					"timestamp":     time.Now(),
				})
			}
		})

		attempts.POST("/:id/resume", func(c *gin.Context) {
			attemptHandler.ResumeAttempt(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptResumed, gin.H{
					"submission_id": c.Param("id"),
					"user_id":       c.GetHeader("X-User-ID"),
					"timestamp":     time.Now(),
				})
			}
		})

		attempts.GET("/", attemptHandler.ListAttempts)
		attempts.GET("/:id", attemptHandler.GetAttempt)
	}
}
