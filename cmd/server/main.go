package main

import (
	"context"
	"log"
	"ticket-inventory/config"
	"ticket-inventory/internal/cache"
	"ticket-inventory/internal/client"
	"ticket-inventory/internal/database"
	"ticket-inventory/internal/handler"
	"ticket-inventory/internal/queue"
	"ticket-inventory/internal/repository"
	"ticket-inventory/internal/service"
	"ticket-inventory/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)

	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketRepository := repository.NewTicketRepository(pool)
	seatCache := cache.NewAvailabilityCache(rdb)

	notificationQueue, err := queue.NewRedisStreamNotificationQueue(rdb, cfg.Notification.StreamConsumerID, nil)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}

	paymentClient := client.NewHTTPPaymentClient(cfg.Payment.ServiceURL, cfg.Payment.Timeout)

	reservationService := service.NewReservationService(pool, ticketRepository, seatCache, cfg.Reservation.HoldDuration)
	saleService := service.NewSaleService(pool, ticketRepository, seatCache)
	inventoryService := service.NewInventoryService(pool, ticketRepository, seatCache)
	bookingService := service.NewBookingService(paymentClient, saleService, notificationQueue)

	holdSweeper := worker.NewHoldSweeper(reservationService, cfg.Reservation.SweepInterval)
	if err := holdSweeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start hold sweeper: %v", err)
	}

	notificationWorker := worker.NewNotificationWorker(&worker.LogSender{}, notificationQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewTicketHandler(inventoryService).RegisterRoutes(router)
	handler.NewReservationHandler(reservationService, saleService).RegisterRoutes(router)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)

	router.Run() // デフォルトで0.0.0.0:8080で待機します
}
