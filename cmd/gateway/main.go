package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/classpoint/gateway/internal/cache"
	"github.com/classpoint/gateway/internal/config"
	gwhttp "github.com/classpoint/gateway/internal/http"
	authctrl "github.com/classpoint/gateway/internal/http/controllers/auth"
	healthctrl "github.com/classpoint/gateway/internal/http/controllers/health"
	"github.com/classpoint/gateway/internal/http/middlewares"
	authsvc "github.com/classpoint/gateway/internal/http/services/auth"
	"github.com/classpoint/gateway/internal/idp"
	"github.com/classpoint/gateway/internal/observability/logger"
	"github.com/classpoint/gateway/internal/tenancy"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Multi-tenant authentication and host-routing gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "gateway.yaml", "path to the YAML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(classifyCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional, container deployments set real env vars.
			_ = godotenv.Load()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.Log.Level,
				ServiceName: "gateway",
				Version:     version,
			})
			defer func() { _ = logger.Sync() }()

			cacheClient, err := cache.New(cache.Config{
				Driver:   cfg.Cache.Driver,
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
				Prefix:   cfg.Cache.Redis.Prefix,
			})
			if err != nil {
				return err
			}
			defer func() { _ = cacheClient.Close() }()

			provider := idp.New(idp.Config{
				Region:       cfg.IDP.Region,
				UserPoolID:   cfg.IDP.UserPoolID,
				ClientID:     cfg.IDP.ClientID,
				ClientSecret: cfg.IDP.ClientSecret,
				Domain:       cfg.IDP.Domain,
				Issuer:       cfg.IDP.Issuer,
				Endpoint:     cfg.IDP.Endpoint,
				Scopes:       cfg.IDP.Scopes,
			})
			keys := idp.NewKeySet(provider, cacheClient, config.Duration(cfg.IDP.JWKSTTL, 15*time.Minute))
			verifier := idp.NewVerifier(keys, provider.Issuer(), cfg.VerifyAudience())

			service := authsvc.New(authsvc.Deps{
				Provider:   provider,
				Verifier:   verifier,
				RootDomain: cfg.Tenancy.RootDomain,
			})

			metricsHandler, err := middlewares.RegisterMetrics(nil)
			if err != nil {
				return err
			}

			router := gwhttp.NewRouter(gwhttp.RouterDeps{
				Auth:       authctrl.New(service, cfg.Tenancy.RootDomain),
				Health:     healthctrl.New(cacheClient),
				Cache:      cacheClient,
				RootDomain: cfg.Tenancy.RootDomain,
				LoginRate: middlewares.RateLimitConfig{
					Limit:  cfg.Rate.Login.Limit,
					Window: config.Duration(cfg.Rate.Login.Window, time.Minute),
				},
				MetricsHandler: metricsHandler,
			})

			srv := gwhttp.NewServer(gwhttp.ServerConfig{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     config.Duration(cfg.Server.ReadTimeout, 10*time.Second),
				WriteTimeout:    config.Duration(cfg.Server.WriteTimeout, 30*time.Second),
				ShutdownTimeout: config.Duration(cfg.Server.ShutdownTimeout, 15*time.Second),
			}, router)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.L().Info("gateway starting",
				logger.String("env", cfg.App.Env),
				logger.String("root_domain", cfg.Tenancy.RootDomain),
				logger.Bool("idp_configured", provider.Configured()),
			)
			return srv.Run(ctx)
		},
	}
}

// classifyCmd is a diagnostic: print how the gateway classifies a host.
func classifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <host>...",
		Short: "Show how hosts are classified against the configured root domain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			for _, raw := range args {
				h := tenancy.Classify(raw, cfg.Tenancy.RootDomain)
				if h.Slug != "" {
					fmt.Printf("%s\t%s\tslug=%s\n", raw, h.Kind, h.Slug)
				} else {
					fmt.Printf("%s\t%s\n", raw, h.Kind)
				}
			}
			return nil
		},
	}
}
