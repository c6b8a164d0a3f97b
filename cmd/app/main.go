package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sushihentaime/inkwell/internal/common"
	"github.com/sushihentaime/inkwell/internal/mailservice"
	"github.com/sushihentaime/inkwell/internal/postservice"
	"github.com/sushihentaime/inkwell/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	postService *postservice.PostService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
}

func main() {
	configPath := flag.String("config", ".env", "path to the .env configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.db())
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if cfg.DBAutoMigrate {
		if _, err := common.Migrate(cfg.MigrationsPath, cfg.db().DSN()); err != nil {
			logger.Error("failed to migrate the database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("database migrations applied", slog.String("source", cfg.MigrationsPath))
	}

	cache, err := newCache(cfg)
	if err != nil {
		logger.Error("failed to set up the cache", slog.String("error", err.Error()))
		os.Exit(1)
	}

	broker, err := common.NewMessageBroker(cfg.amqpURI())
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupPostExchange(broker)
	if err != nil {
		logger.Error("failed to setup the post exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, cache, logger),
		postService: postservice.NewPostService(db, cache, broker, logger),
		mailService: mailservice.NewMailService(broker, cfg.mail(), logger),
		broker:      broker,
	}

	app.mailService.SendPublishedEmail()
	defer app.mailService.Close()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newCache returns a redis backed cache when REDIS_ADDR is set and an in-process one
// otherwise.
func newCache(cfg *Config) (common.Cache, error) {
	if cfg.RedisAddr == "" {
		return common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL), nil
	}

	return common.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
}
