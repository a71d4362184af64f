package main

import (
	"flag"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"campusconnect/impl/auth"
	"campusconnect/impl/core"
	"campusconnect/impl/token"
	"campusconnect/internal/config"
	"campusconnect/internal/database"
	"campusconnect/internal/http-server/api"
	"campusconnect/internal/notify"
	"campusconnect/lib/logger"
	"campusconnect/lib/sl"
)

const logFileName = "campusconnect.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logg := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	logg.Info("starting campusconnect", slog.String("config", *configPath), slog.String("env", conf.Env))

	store, err := database.New(conf)
	if err != nil {
		log.Fatal("database: ", err)
	}
	defer store.Close()

	notifier, err := notify.New(conf, logg)
	if err != nil {
		logg.Error("telegram notifier disabled", sl.Err(err))
	}
	if notifier != nil {
		// forward error-level records to the admin chat
		logg = slog.New(logger.NewAlertHandler(logg.Handler(), notifier, slog.LevelError))
	}

	authService, err := auth.New(store, conf.Auth.Secret, time.Duration(conf.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatal("auth: ", err)
	}

	issuer := token.NewIssuer(store, time.Duration(conf.Tokens.QRWindowMinutes)*time.Minute)

	handler := core.New(store, issuer, logg)
	handler.SetAuthService(authService)
	if mongo := database.NewMongoClient(conf); mongo != nil {
		handler.SetAuditLog(mongo)
		logg.Info("scan audit log enabled")
	}
	if notifier != nil {
		handler.SetNotifier(notifier)
	}

	if err = api.New(conf, logg, handler); err != nil {
		logg.Error("api server stopped", sl.Err(err))
	}
}
