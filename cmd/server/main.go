package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/config"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/repository/sheets"
	"github.com/alumnilink/backend/internal/scheduler"
	"github.com/alumnilink/backend/internal/server/handlers"
	"github.com/alumnilink/backend/internal/server/router"
	checkoutsvc "github.com/alumnilink/backend/internal/service/checkout"
	newslettersvc "github.com/alumnilink/backend/internal/service/newsletter"
	reportingsvc "github.com/alumnilink/backend/internal/service/reporting"
	sponsorshipsvc "github.com/alumnilink/backend/internal/service/sponsorship"
	"github.com/alumnilink/backend/pkg/clients/maya"
	"github.com/alumnilink/backend/pkg/clients/zeptomail"
	"github.com/alumnilink/backend/pkg/logger"
	"github.com/alumnilink/backend/pkg/uploads"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Debug))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI)
	if err != nil {
		baseLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.DBName)
	donationRepo := mongodb.NewDonationRepository(db, baseLogger.Named("repo.donations"))
	eventRepo := mongodb.NewEventRepository(db, baseLogger.Named("repo.events"))
	jobRepo := mongodb.NewJobRepository(db)
	announcementRepo := mongodb.NewAnnouncementRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	subscriberRepo := mongodb.NewSubscriberRepository(db)

	var exporter sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		exportRepo, err := sheets.NewReportExportRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init report export repository", zap.Error(err))
		}
		exporter = exportRepo
	} else {
		baseLogger.Warn("report spreadsheet not configured, monthly export disabled")
	}

	var uploader uploads.Uploader
	if cfg.Cloudinary.CloudName != "" {
		cloudinaryUploader, err := uploads.NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			baseLogger.Fatal("failed to init cloudinary uploader", zap.Error(err))
		}
		uploader = cloudinaryUploader
	} else {
		baseLogger.Warn("cloudinary not configured, image uploads disabled")
	}

	mayaClient := maya.NewClient(cfg.Maya)
	mailClient := zeptomail.NewClient(cfg.Mail)

	sponsorshipSvc := sponsorshipsvc.NewService(donationRepo, eventRepo, notificationRepo, baseLogger.Named("svc.sponsorship"))
	reportingSvc := reportingsvc.NewService(donationRepo, exporter, baseLogger.Named("svc.reporting"))
	checkoutSvc := checkoutsvc.NewService(donationRepo, eventRepo, notificationRepo, mayaClient, cfg.Maya.RedirectURL, baseLogger.Named("svc.checkout"))
	newsletterSvc := newslettersvc.NewService(subscriberRepo, announcementRepo, eventRepo, mailClient, baseLogger.Named("svc.newsletter"))

	engine := router.New(cfg, router.Handlers{
		Events:        handlers.NewEventHandler(eventRepo, uploader, baseLogger.Named("handlers.events")),
		Sponsorship:   handlers.NewSponsorshipHandler(sponsorshipSvc, baseLogger.Named("handlers.sponsorship")),
		Checkout:      handlers.NewCheckoutHandler(checkoutSvc, baseLogger.Named("handlers.checkout")),
		Reports:       handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Donations:     handlers.NewDonationHandler(donationRepo, baseLogger.Named("handlers.donations")),
		Jobs:          handlers.NewJobHandler(jobRepo, baseLogger.Named("handlers.jobs")),
		Announcements: handlers.NewAnnouncementHandler(announcementRepo, uploader, baseLogger.Named("handlers.announcements")),
		Notifications: handlers.NewNotificationHandler(notificationRepo, baseLogger.Named("handlers.notifications")),
		Newsletter:    handlers.NewNewsletterHandler(newsletterSvc, baseLogger.Named("handlers.newsletter")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg, newsletterSvc, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
