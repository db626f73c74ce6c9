package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
	"github.com/xor-shift/chanserv/bot/modules/setMod"
	"github.com/xor-shift/chanserv/bot/modules/setOptsMod"
	tPlat "github.com/xor-shift/chanserv/bot/platforms/terminal"
)

var cfgFile string

//boot loads the configuration, sets up logging and opens the channel store
func boot() (*config.Config, *chanstore.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg.SetupLogging()

	store, err := chanstore.Open(cfg.Database, cfg.Services.OperLevel)
	if err != nil {
		return nil, nil, err
	}

	return cfg, store, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, store, err := boot()
	if err != nil {
		return err
	}
	defer store.Close()

	bus := mbus.New()

	commands := commandMod.New(store, cfg)
	set := setMod.New(commands, store)
	options := setOptsMod.New(set.Command(), store)
	platform := tPlat.New("std", cfg.Terminal, os.Stdin, os.Stdout)

	//SET has to be on the command module before its options can attach to it
	bus.RegisterModule(commands)
	bus.RegisterModule(set)
	bus.RegisterModule(options)
	bus.RegisterModule(platform)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus.RunAsync()

	go func() {
		if err := platform.Serve(ctx); err != nil && err != context.Canceled {
			log.WithError(err).Error("terminal input failed")
		}
		stop()
	}()

	log.WithFields(log.Fields{
		"database": cfg.Database,
		"nick":     cfg.Services.ServiceNick,
		"ident":    cfg.Terminal.Ident,
	}).Info("services are running")

	<-ctx.Done()
	log.Info("shutting down")
	bus.Stop()

	return nil
}

func main() {
	configPath := os.Getenv("CHANSERV_CONFIG")

	var rootCmd = &cobra.Command{
		Use:          "chanserv",
		Short:        "Channel services with a pluggable SET command",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", configPath, "config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(setPermCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
