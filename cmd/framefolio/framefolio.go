package framefolio

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/framefolio/framefolio/pkg/api"
	"github.com/framefolio/framefolio/pkg/auth"
	"github.com/framefolio/framefolio/pkg/config"
	"github.com/framefolio/framefolio/pkg/content"
	contentgorm "github.com/framefolio/framefolio/pkg/content/gorm"
	"github.com/framefolio/framefolio/pkg/share"
)

func setupLogs(logConfig config.Logging) {
	// Equivalent of Lshortfile
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return file + ":" + strconv.Itoa(line)
	}

	// Set log level
	logLevel := zerolog.TraceLevel
	switch logConfig.Level {
	case "panic":
		logLevel = zerolog.PanicLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "trace":
		logLevel = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Set log output format
	if logConfig.JSONFormat {
		log.Logger = log.With().Caller().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Caller().Logger()
	}
}

// Services bundles the share subsystem and its collaborators.
type Services struct {
	Store     share.HandleStore
	Issuer    *share.Issuer
	Resolver  *share.Resolver
	Galleries content.Store
	Sessions  *auth.OAuthService
}

func GetServices(c config.FramefolioConfig) (*Services, error) {
	lifetime := time.Duration(c.Share.LifetimeSeconds) * time.Second
	sweep := time.Duration(c.Share.SweepIntervalSeconds) * time.Second

	codec, err := share.NewCodec(c.Share.SigningSecret, lifetime)
	if err != nil {
		return nil, err
	}

	store := share.NewMemoryHandleStore(lifetime, sweep)

	galleries, err := contentgorm.NewStore(c.Database)
	if err != nil {
		return nil, err
	}
	if err := galleries.Seed(c.Galleries); err != nil {
		return nil, err
	}

	sessions, err := auth.NewOAuthService(c.Auth, c.Share.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Services{
		Store:     store,
		Issuer:    share.NewIssuer(codec, store, c.Share.BaseURL, c.Share.HandleLength),
		Resolver:  share.NewResolver(codec, store),
		Galleries: galleries,
		Sessions:  sessions,
	}, nil
}

func Run(c config.FramefolioConfig) {
	setupLogs(c.Logging)

	log.Debug().Msg("Starting Framefolio")

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	services, err := GetServices(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to set up services")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		apiFunctions := api.NewFramefolioAPI(c, services.Issuer, services.Resolver, services.Galleries, services.Sessions)
		gate := auth.NewGate(services.Sessions, services.Resolver, c.Auth)

		mux := api.CreateMux(c, apiFunctions, gate)
		api.RunAPI(ctx, c.API, mux)
	}()

	// Set up channel to listen for SIGINT (Ctrl+C) and SIGTERM (kill command)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, os.Interrupt)

	go func() {
		<-sigs
		log.Info().Msg("Shutting down")
		cancel()
	}()

	wg.Wait()
}
