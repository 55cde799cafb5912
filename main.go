package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flatmate/config"
	"flatmate/cron"
	"flatmate/database"
	billingRepoPkg "flatmate/database/repository/billing"
	memberRepoPkg "flatmate/database/repository/member"
	noticeRepoPkg "flatmate/database/repository/notice"
	paymentRepoPkg "flatmate/database/repository/payment"
	"flatmate/handlers"
	"flatmate/middleware"
	"flatmate/routes"
	"flatmate/services/gateway"
	"flatmate/services/member"
	"flatmate/services/notice"
	"flatmate/services/notification"
	"flatmate/services/payment"
	"flatmate/services/tasks"
	"flatmate/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		// Attachments are optional; the notice board still works without them.
		logger.Sugar().Warnf("main: cloudinary storage unavailable: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	membRepo := memberRepoPkg.NewFirebaseMemberRepo()
	ledgerRepo := paymentRepoPkg.NewFirebasePaymentRepo()
	billingRepo := billingRepoPkg.NewFirebaseBillingRepo()
	notRepo := noticeRepoPkg.NewFirebaseNoticeRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(membRepo, utils.FCMClient)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	paymentService := payment.NewPaymentService(membRepo, ledgerRepo, billingRepo, notificationService)

	memberService := &member.DefaultMemberService{
		Repo:   membRepo,
		Ledger: ledgerRepo,
		Cache:  utils.GetAuthCacheClient(),
	}

	noticeService := &notice.DefaultNoticeService{
		Repo:     notRepo,
		Storage:  cloudinaryStorageService,
		Notifier: notificationService,
		Members:  membRepo,
	}

	razorpayGateway := gateway.NewRazorpayGateway(
		config.AppConfig.RazorpayKeyID,
		config.AppConfig.RazorpayKeySecret,
		config.AppConfig.RazorpayWebhookSecret,
	)

	reminderQueue := tasks.NewAsynqClient()
	defer reminderQueue.Close()
	cron.InitReminderWorker(notificationService)

	// handlers.
	memberHandler := &handlers.MemberHandler{Service: memberService}
	paymentHandler := &handlers.PaymentHandler{Service: paymentService}
	gatewayHandler := &handlers.GatewayHandler{Gateway: razorpayGateway, Payments: paymentService}
	noticeHandler := &handlers.NoticeHandler{Service: noticeService, Members: memberService}
	adminHandler := &handlers.AdminHandler{
		Members:    memberService,
		Payments:   paymentService,
		Billing:    billingRepo,
		MemberRepo: membRepo,
		Ledger:     ledgerRepo,
		Queue:      reminderQueue,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		MemberRepo: membRepo,

		// Member account endpoints.
		RegisterMemberHandler:     memberHandler.RegisterMemberHandler,
		AuthenticateMemberHandler: memberHandler.AuthenticateMemberHandler,
		SignOutHandler:            memberHandler.SignOutHandler,
		GetProfileHandler:         memberHandler.GetProfileHandler,
		UpdateProfileHandler:      memberHandler.UpdateProfileHandler,
		RegisterFCMTokenHandler:   memberHandler.RegisterFCMTokenHandler,

		// Dues and payment endpoints.
		GetQuoteHandler:   paymentHandler.GetQuoteHandler,
		GetBillHandler:    paymentHandler.GetBillHandler,
		GetHistoryHandler: paymentHandler.GetHistoryHandler,

		// Gateway checkout endpoints.
		CreateOrderHandler:   gatewayHandler.CreateOrderHandler,
		VerifyPaymentHandler: gatewayHandler.VerifyPaymentHandler,
		GetPaymentHandler:    gatewayHandler.GetPaymentHandler,
		WebhookHandler:       gatewayHandler.WebhookHandler,

		// Notices and documents.
		ListNoticesHandler:   noticeHandler.ListNoticesHandler,
		ListDocumentsHandler: noticeHandler.ListDocumentsHandler,

		// Admin endpoints.
		GetAllMembersHandler:     adminHandler.GetAllMembersHandler,
		AddMemberHandler:         adminHandler.AddMemberHandler,
		DeleteMemberHandler:      adminHandler.DeleteMemberHandler,
		ManualEditHandler:        adminHandler.ManualEditHandler,
		CollectPaymentHandler:    adminHandler.CollectPaymentHandler,
		RecentPaymentsHandler:    adminHandler.RecentPaymentsHandler,
		GetBillingConfigHandler:  adminHandler.GetBillingConfigHandler,
		SaveBillingConfigHandler: adminHandler.SaveBillingConfigHandler,
		SendRemindersHandler:     adminHandler.SendRemindersHandler,
		AdminListNoticesHandler:  noticeHandler.AdminListNoticesHandler,
		CreateNoticeHandler:      noticeHandler.CreateNoticeHandler,
		DeleteNoticeHandler:      noticeHandler.DeleteNoticeHandler,
		CreateDocumentHandler:    noticeHandler.CreateDocumentHandler,
		DeleteDocumentHandler:    noticeHandler.DeleteDocumentHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
