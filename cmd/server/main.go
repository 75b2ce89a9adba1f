package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vincula/internal/address"
	"vincula/internal/auth"
	"vincula/internal/cart"
	"vincula/internal/category"
	"vincula/internal/commons"
	"vincula/internal/config"
	"vincula/internal/graphql"
	"vincula/internal/infrastructure/logger"
	"vincula/internal/infrastructure/mysql"
	"vincula/internal/metrics"
	"vincula/internal/order"
	"vincula/internal/payment"
	"vincula/internal/product"
	"vincula/internal/review"
	"vincula/internal/server"
	"vincula/internal/shipping"
	"vincula/internal/user"
	"vincula/internal/wishlist"
)

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	userCtrl, userSvc := user.NewModule(db, cfg, zapLogger)
	userRepo := user.NewMySQLRepository(db)

	categoryRepo := category.NewMySQLRepository(db)
	productCtrl, productSvc, productRepo := product.NewModule(db, categoryRepo, cfg, zapLogger)
	categoryCtrl, _ := category.NewModule(db, productRepo, cfg, zapLogger)

	orderCtrl, orderSvc := order.NewModule(db, productRepo, userRepo, productSvc, cfg, zapLogger)

	cartCtrl, _ := cart.NewModule(db, productRepo, zapLogger)
	addressCtrl, _ := address.NewModule(db, userRepo, cfg, zapLogger)
	paymentCtrl, _ := payment.NewModule(db, userRepo, cfg, zapLogger)
	shippingCtrl, _, _ := shipping.NewModule(db, cfg, zapLogger)
	reviewCtrl, _ := review.NewModule(db, productRepo, cfg, zapLogger)
	wishlistCtrl, _ := wishlist.NewModule(db, productRepo, cfg, zapLogger)

	jwtManager := auth.NewManager(cfg.Auth)
	authCtrl := auth.NewController(userSvc, jwtManager, zapLogger)
	authMW := auth.NewMiddleware(jwtManager, zapLogger)

	graphqlHandler, err := graphql.NewHandler(orderSvc, zapLogger)
	if err != nil {
		zapLogger.Fatal("building graphql schema", zap.Error(err))
	}

	serverMetrics := metrics.NewServerMetrics("api")

	router := server.NewRouter(server.Controllers{
		Auth:     authCtrl,
		Users:    userCtrl,
		Products: productCtrl,
		Category: categoryCtrl,
		Orders:   orderCtrl,
		Cart:     cartCtrl,
		Address:  addressCtrl,
		Payment:  paymentCtrl,
		Shipping: shippingCtrl,
		Reviews:  reviewCtrl,
		Wishlist: wishlistCtrl,
		GraphQL:  graphqlHandler,
	}, authMW, serverMetrics, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
