package main

import (
	"context"
	"time"

	"github.com/Chandrasura25/Social-media-backend-case-study/config"
	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/notify"
	"github.com/Chandrasura25/Social-media-backend-case-study/routes"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)
	rc := utils.GetRedis()
	cache := utils.NewCache(rc)

	bg, stop := context.WithCancel(context.Background())
	defer stop()

	// Notifications: persist, then publish. With Redis every instance relays
	// into its own hub so streams see events raised anywhere.
	hub := notify.NewHub()
	var publisher notify.Publisher = hub
	if rc != nil {
		relay := notify.NewRedisRelay(rc, cfg.NotifyChannel, hub)
		publisher = relay
		go func() {
			if err := relay.Run(bg, nil); err != nil {
				utils.Sugar.Errorf("notification relay stopped: %v", err)
			}
		}()
	}
	notifications := stores.NewNotificationStore(db)
	dispatcher := notify.NewDispatcher(notifications, publisher, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	// Start background cleanup for read notifications (best-effort)
	retention := time.Duration(cfg.NotificationRetentionDays) * 24 * time.Hour
	utils.StartRetentionCleaner(bg, "notification", time.Hour, retention, notifications.PurgeRead)

	r := routes.SetupRouter(routes.Dependencies{
		DB:       db,
		Cache:    cache,
		Notifier: dispatcher,
		Hub:      hub,
		Media:    utils.NewLocalMediaStore(cfg.MediaDir, cfg.MediaBaseURL, cfg.MediaMaxBytes),
	})

	srv := utils.NewServer(":"+cfg.AppPort, r, utils.DEFAULT_READ_TIMEOUT, 0, dispatcher.Close, stop)
	// open streams block Shutdown until they end
	srv.RegisterOnShutdown(hub.Close)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
