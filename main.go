package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andocmdo/eink-display-control-panel/api"
	"github.com/andocmdo/eink-display-control-panel/config"
	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Setup(cfg.IsDevelopment(), cfg.LogLevel)

	srv, err := server.New(server.NewConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	// Routes live in api to avoid an import cycle with server
	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))

	go func() {
		printNetworkAddresses(cfg.Port)
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}

// printNetworkAddresses logs the LAN URLs the dashboard is reachable at
func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					log.Info().Str("url", fmt.Sprintf("http://%s:%d", ip4, port)).Msg("network")
				}
			}
		}
	}
}
