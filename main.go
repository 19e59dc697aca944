package main

import (
	"context"
	"log"
	"os"
	"time"

	"soa/tours-service/database"
	"soa/tours-service/events"
	"soa/tours-service/handlers"
	"soa/tours-service/opentelemetery"
	"soa/tours-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		log.Println("No .env file found or failed to load it:", err)
	}

	shutdownTracer, err := opentelemetery.Init(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shut down tracer: %v", err)
		}
	}()

	mongoUri := os.Getenv("MONGODB_URI")
	if mongoUri == "" {
		mongoUri = os.Getenv("TOUR_DATABASE_URL")
	}
	mongoClient, err := database.Connect(mongoUri)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect MongoDB client: %v", err)
		}
	}()

	dbName := os.Getenv("TOUR_DATABASE_NAME")
	if dbName == "" {
		dbName = "tours"
	}
	store := database.NewStore(mongoClient, dbName)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancelIndex()

	var natsConn *nats.Conn
	natsURL := os.Getenv("NATS_URL")
	for i := 0; i < 10; i++ {
		natsConn, err = nats.Connect(natsURL)
		if err == nil {
			break
		}
		log.Printf("Waiting for NATS to be ready... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to NATS after retries: %v", err)
	}
	defer natsConn.Close()

	purchaseService := services.NewPurchaseService(store)
	tourService := services.NewTourService(store, purchaseService)
	cartService := services.NewCartService(store, store, store, events.NewPublisher(natsConn))
	positionService := services.NewPositionService(store)
	executionService := services.NewExecutionService(store, store, store, purchaseService)

	tourHandler := handlers.NewTourHandler(tourService)
	cartHandler := handlers.NewShoppingCartHandler(cartService, purchaseService)
	positionHandler := handlers.NewPositionHandler(positionService)
	executionHandler := handlers.NewTourExecutionHandler(executionService)

	r := gin.Default()

	allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:4200"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")

	api.POST("/tours", tourHandler.CreateTour)
	api.GET("/tours/my", tourHandler.GetMyTours)
	api.GET("/tours/published", tourHandler.GetPublishedTours)
	api.GET("/tours/:id", tourHandler.GetTourByID)
	api.PUT("/tours/:id", tourHandler.UpdateTour)
	api.DELETE("/tours/:id", tourHandler.DeleteTour)
	api.PUT("/tours/:id/publish", tourHandler.PublishTour)
	api.PUT("/tours/:id/archive", tourHandler.ArchiveTour)

	api.POST("/tours/:id/keypoints", tourHandler.AddKeyPoint)
	api.GET("/tours/:id/keypoints", tourHandler.GetKeyPoints)

	api.PUT("/position", positionHandler.UpdatePosition)
	api.GET("/position", positionHandler.GetMyPosition)

	api.GET("/shoppingcart", cartHandler.GetCart)
	api.POST("/shoppingcart/add", cartHandler.AddToCart)
	api.DELETE("/shoppingcart/remove/:tourId", cartHandler.RemoveFromCart)
	api.POST("/shoppingcart/checkout", cartHandler.Checkout)
	api.GET("/shoppingcart/purchased", cartHandler.GetPurchasedTours)

	api.POST("/tourexecution/start", executionHandler.StartTourExecution)
	api.POST("/tourexecution/check-keypoint", executionHandler.CheckKeyPoint)
	api.PUT("/tourexecution/complete", executionHandler.CompleteTourExecution)
	api.PUT("/tourexecution/abandon", executionHandler.AbandonTourExecution)
	api.GET("/tourexecution/active", executionHandler.GetActiveTourExecution)
	api.GET("/tourexecution/history", executionHandler.GetExecutionHistory)

	port := os.Getenv("TOURS_SERVICE_PORT")
	if port == "" {
		port = "8083"
	}

	log.Printf("Tours service listening at :%v", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
