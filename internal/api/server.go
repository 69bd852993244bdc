package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/swapnest/swapnest-api/docs"
	v1 "github.com/swapnest/swapnest-api/internal/api/handler/v1"
	"github.com/swapnest/swapnest-api/internal/api/middleware"
	"github.com/swapnest/swapnest-api/internal/config"
	"github.com/swapnest/swapnest-api/internal/repository"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
	"github.com/swapnest/swapnest-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	services := s.initServices(db)
	transactionHandler := v1.NewTransactionHandler(services.transactions)
	deliveryHandler := v1.NewDeliveryHandler(services.delivery)
	serviceRequestHandler := v1.NewServiceRequestHandler(services.serviceRequests)
	redemptionHandler := v1.NewRedemptionHandler(services.redemption)
	notificationHandler := v1.NewNotificationHandler(services.notifications)
	s.MountHandlers(transactionHandler, deliveryHandler, serviceRequestHandler, redemptionHandler, notificationHandler)

	return s
}

// services bundles the wired service graph. Transactions, delivery and
// redemption share one reservation service so every product lock goes
// through the same conditional writes.
type services struct {
	transactions    *service.TransactionService
	delivery        *service.DeliveryService
	serviceRequests *service.ServiceRequestService
	redemption      *service.RedemptionService
	notifications   *service.NotificationService
}

func (s *Server) initServices(db *gorm.DB) services {
	catalogRepo := repository.NewCatalogRepository(dao.NewCatalogDAO(db))
	transactionRepo := repository.NewTransactionRepository(dao.NewTransactionDAO(db))
	tokenRepo := repository.NewDeliveryTokenRepository(dao.NewDeliveryTokenDAO(db))
	statsRepo := repository.NewUserStatsRepository(dao.NewUserStatsDAO(db))
	requestRepo := repository.NewServiceRequestRepository(dao.NewServiceRequestDAO(db))
	notificationRepo := repository.NewNotificationRepository(dao.NewNotificationDAO(db))

	notifier := service.NewNotificationService(notificationRepo)
	reservations := service.NewReservationService(catalogRepo)
	ledger := service.NewLedgerService(statsRepo)

	transactions := service.NewTransactionService(transactionRepo, catalogRepo, reservations, statsRepo, notifier)
	tokenTTL := time.Duration(s.Config.Engine.DeliveryTokenTTLHours) * time.Hour
	delivery := service.NewDeliveryService(tokenRepo, catalogRepo, transactions, reservations, notifier, tokenTTL)
	serviceRequests := service.NewServiceRequestService(requestRepo, ledger, notifier)
	redemption := service.NewRedemptionService(ledger, catalogRepo, reservations, notifier, s.Config.Engine.SurpriseBoxCost)

	return services{
		transactions:    transactions,
		delivery:        delivery,
		serviceRequests: serviceRequests,
		redemption:      redemption,
		notifications:   notifier,
	}
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	transactionHandler *v1.TransactionHandler,
	deliveryHandler *v1.DeliveryHandler,
	serviceRequestHandler *v1.ServiceRequestHandler,
	redemptionHandler *v1.RedemptionHandler,
	notificationHandler *v1.NotificationHandler,
) {
	const basePath = "/api/v1"

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.POST("/transactions", transactionHandler.HandleCreatePurchaseRequest)
		authenticated.POST("/trades", transactionHandler.HandleCreateTradeOffer)
		authenticated.GET("/transactions", transactionHandler.HandleGetTransactions)
		authenticated.GET("/transactions/:transactionID", transactionHandler.HandleGetTransaction)
		authenticated.POST("/transactions/:transactionID/respond", transactionHandler.HandleRespondToOffer)
		authenticated.POST("/transactions/:transactionID/cancel", transactionHandler.HandleCancelTransaction)

		authenticated.POST("/delivery/tokens", deliveryHandler.HandleGenerateToken)
		authenticated.GET("/delivery/tokens", deliveryHandler.HandleGetTokens)
		authenticated.POST("/delivery/redeem", deliveryHandler.HandleRedeemToken)

		authenticated.POST("/services/offers/:offerID/requests", serviceRequestHandler.HandleCreateRequest)
		authenticated.GET("/services/requests/:requestID", serviceRequestHandler.HandleGetRequest)
		authenticated.POST("/services/requests/:requestID/respond", serviceRequestHandler.HandleRespondToRequest)
		authenticated.POST("/services/requests/:requestID/complete", serviceRequestHandler.HandleCompleteRequest)

		authenticated.POST("/surprise-box/redeem", redemptionHandler.HandleRedeemSurpriseBox)

		authenticated.GET("/notifications", notificationHandler.HandleGetNotifications)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "SwapNest Ledger API"
	docs.SwaggerInfo.Description = "Transaction, delivery and time-credit ledger engine for the SwapNest marketplace."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
