package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Joseda-hg/lazytodo/internal/auth"
	"github.com/Joseda-hg/lazytodo/internal/config"
	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/flash"
	"github.com/Joseda-hg/lazytodo/internal/tui"
	"github.com/Joseda-hg/lazytodo/internal/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	portFlag := flag.Int("port", 0, "web server port")
	tuiFlag := flag.Bool("tui", false, "open the terminal UI instead of the web server")
	userFlag := flag.String("user", "", "username for the terminal UI")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "lazytodo.db")
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	cfg.EnsureSecret()

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}

	if *tuiFlag {
		if err := runTUI(store, *userFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			_ = store.DB.Close()
			os.Exit(1)
		}
		_ = store.DB.Close()
		return
	}

	os.Exit(runWeb(cfg, store))
}

func runTUI(store *db.Store, username string) error {
	if username == "" {
		return errors.New("-tui requires -user <name>")
	}
	user, err := store.GetUserByUsername(context.Background(), username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("unknown user %q, register through the web UI first", username)
		}
		return err
	}
	return tui.Run(store, user)
}

func runWeb(cfg config.Config, store *db.Store) int {
	jwtConfig := auth.DefaultJWTConfig(cfg.ResolvedSecret())
	if ttl := cfg.SessionTTL(); ttl > 0 {
		jwtConfig.TokenDuration = ttl
	}
	authService, err := auth.NewService(store, auth.NewPasswordHasher(cfg.BcryptCost), auth.NewJWTManager(jwtConfig))
	if err != nil {
		log.Fatal(err)
	}

	opts := []web.Option{web.WithSecureCookies(cfg.SecureCookies)}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("connect to redis at %s: %v", cfg.RedisAddr, err)
		}
		opts = append(opts, web.WithFlashStore(flash.NewRedisStore(redisClient, 0, cfg.SecureCookies)))
		log.Printf("Flash messages stored in redis at %s", cfg.RedisAddr)
	}

	addr := fmt.Sprintf(":%d", cfg.WebPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           web.NewServer(store, authService, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Web server running at http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("web server error: %v", err)
		}
	}()

	// Operations run concurrently, so dependencies are closed only after the server has drained.
	operations := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Println("Graceful shutdown initiated...")
			errs := []error{server.Shutdown(ctx), store.DB.Close()}
			if redisClient != nil {
				errs = append(errs, redisClient.Close())
			}
			return errors.Join(errs...)
		},
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout(), operations)
	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	return exitCode
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(dbPath string) (*db.Store, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}
