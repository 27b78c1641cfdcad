// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmhodges/clock"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/u-root/clevo-wmi/config"
	"github.com/u-root/clevo-wmi/pkg/driver"
	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/hardware/wmi"
	"github.com/u-root/clevo-wmi/pkg/host"
	"github.com/u-root/clevo-wmi/pkg/logger"
	"github.com/u-root/clevo-wmi/pkg/metric"
	"github.com/u-root/clevo-wmi/pkg/network/web"
	"github.com/u-root/clevo-wmi/pkg/platform"
	"github.com/u-root/clevo-wmi/pkg/power"
	"github.com/u-root/clevo-wmi/pkg/service/control"
	grpcsvc "github.com/u-root/clevo-wmi/pkg/service/grpc"
)

const shutdownTimeout = 5 * time.Second

// flagOverrides returns the flags given on the command line keyed by
// their configuration name, "init-color" becomes "init_color".
func flagOverrides(fs *flag.FlagSet) map[string]interface{} {
	o := map[string]interface{}{}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			return
		}
		o[strings.ReplaceAll(f.Name, "-", "_")] = f.Value.(flag.Getter).Get()
	})
	return o
}

func serve(args []string) error {
	d := config.DefaultConfig
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	path := fs.String("config", "", "YAML configuration file, "+config.DefaultPath+" if it exists")
	fs.Int("init-color", d.InitColor, "LED color at load, 1 green, 0 yellow, other values keep it")
	fs.String("platform", d.Platform, "Platform: "+strings.Join(platform.Names(), ", "))
	fs.String("socket", d.Socket, "Control socket")
	fs.String("metrics-address", d.MetricsAddress, "Prometheus listen address, empty disables")
	fs.String("grpc-address", d.GRPCAddress, "gRPC health listen address, empty disables")
	fs.String("log-level", d.LogLevel, "Log level")
	fs.String("log-file", d.LogFile, "Additional JSON log file")
	fs.Int("rearm-retries", d.ReArmRetries, "Extra attempts to re-enable notifications after resume")
	fs.Duration("resume-watch-interval", d.ResumeWatchInterval, "Poll the sleep clock to detect resume, 0 disables")
	fs.Bool("fan-legacy-hex", d.FanLegacyHex, "Decode the fan period without zero padding")
	fs.Parse(args)

	osFs := afero.NewOsFs()
	cfg, err := config.Load(osFs, *path, flagOverrides(fs))
	if err != nil {
		return err
	}
	if err := logger.LogContainer.Configure(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}); err != nil {
		return err
	}
	log := logger.LogContainer.GetSimpleLogger()
	defer logger.LogContainer.Sync()
	log.Infof("clevo-wmid %s (%s)", cfg.Version.Version, cfg.Version.GitHash)

	base, err := platform.Lookup(cfg.Platform)
	if err != nil {
		return err
	}
	p := *base
	if cfg.MethodPath != "" {
		p.MethodPath = cfg.MethodPath
	}

	acpi := wmi.NewACPICall(osFs, cfg.ACPICallPath, map[string]string{p.MethodGUID: p.MethodPath})
	if !acpi.Available() {
		log.Warnf("%s missing, is the acpi_call module loaded?", cfg.ACPICallPath)
	}
	regs := ec.NewIOFile(osFs, cfg.ECIOPath)
	if !regs.Available() {
		log.Warnf("%s missing, LED and fan reads will fail until ec_sys is loaded", regs.Path())
	}

	notifier := power.NewNotifier()
	ctl := control.New(notifier.Notify, log)
	health := grpcsvc.NewServer(log)

	drv, err := driver.Load(driver.Options{
		Platform: &p,
		Firmware: wmi.NewChannel(acpi, p.MethodGUID, log),
		EC:       regs,
		Host: host.New(host.Options{
			Fs:         osFs,
			SysfsRoot:  cfg.WMISysfsRoot,
			UinputPath: cfg.UinputPath,
			Control:    ctl,
			Power:      notifier,
			Log:        log,
		}),
		InitColor:    cfg.InitColor,
		LegacyFanHex: cfg.FanLegacyHex,
		ReArm: driver.ReArmPolicy{
			Retries: cfg.ReArmRetries,
			Min:     cfg.ReArmBackoffMin,
			Max:     cfg.ReArmBackoffMax,
			Clock:   clock.Default(),
		},
		Log:           log,
		OnStateChange: func(s driver.State) { health.SetArmed(s == driver.Enabled) },
	})
	if err != nil {
		return err
	}
	defer drv.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var servers []*web.WebServer
	ctlWeb := web.NewWebserver()
	ctl.Register(ctlWeb.Mux)
	metric.StartMetrics(ctlWeb.Mux)
	if err := ctlWeb.SetServer(cfg.Socket); err != nil {
		return err
	}
	servers = append(servers, ctlWeb)
	log.Infof("Control surface on %s", cfg.Socket)

	if cfg.MetricsAddress != "" {
		mw := web.NewWebserver()
		metric.StartMetrics(mw.Mux)
		if err := mw.SetServer(cfg.MetricsAddress); err != nil {
			return err
		}
		servers = append(servers, mw)
		log.Infof("Metrics on %s", cfg.MetricsAddress)
	}
	for _, s := range servers {
		s := s
		g.Go(s.Serve)
	}

	if cfg.GRPCAddress != "" {
		l, err := net.Listen(web.Network(cfg.GRPCAddress), cfg.GRPCAddress)
		if err != nil {
			return err
		}
		g.Go(func() error { return health.Serve(l) })
	}

	if cfg.ResumeWatchInterval > 0 {
		w := &power.Watcher{
			Interval:  cfg.ResumeWatchInterval,
			Threshold: cfg.ResumeWatchThreshold,
			Notify:    notifier.Notify,
			Log:       log,
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(sctx); err != nil {
				log.Warnf("Shutting down %s: %v", s.Serv.Addr, err)
			}
		}
		health.Stop()
		return nil
	})
	return g.Wait()
}
