package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/famquest/internal/api"
	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/jobs"
	"github.com/julianstephens/famquest/internal/keyring"
	"github.com/julianstephens/famquest/internal/logger"
)

type ServeCmd struct {
	Addr           string        `help:"Address to listen on." env:"FAMQUEST_ADDR" default:"${listen_addr}"`
	AdminSecret    string        `help:"Secret for the admin routes; falls back to the OS keyring. Admin routes are disabled without one." env:"FAMQUEST_ADMIN_SECRET"`
	RecalcSchedule string        `help:"Cron schedule for streak repair." env:"FAMQUEST_RECALC_SCHEDULE" default:"${recalc_schedule}"`
	NoCron         bool          `help:"Disable the scheduled streak repair."`
	ShutdownGrace  time.Duration `help:"How long to drain requests on shutdown." default:"10s"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret := c.AdminSecret
	if secret == "" {
		secret = adminSecretFromKeyring()
	}

	server := api.NewServer(api.Config{
		Addr:            c.Addr,
		AdminSecret:     secret,
		ShutdownTimeout: c.ShutdownGrace,
	}, ctx.Completions(), ctx.Dashboard(), ctx.Recalculator())

	var runner *jobs.Runner
	if !c.NoCron {
		var err error
		runner, err = jobs.NewRunner(c.RecalcSchedule, ctx.Recalculator())
		if err != nil {
			return err
		}
		runner.Start()
		logger.Info("Scheduled streak repair", "schedule", c.RecalcSchedule)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("famquest %s listening on %s\n", constants.Version, c.Addr)
	if secret == "" {
		fmt.Println(cli.WarningStyle.Render("Admin routes disabled: no admin secret configured"))
	}
	serveErr := server.ListenAndServe(sigCtx)

	if runner != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownGrace)
		defer cancel()
		runner.Stop(stopCtx)
	}
	return serveErr
}

func adminSecretFromKeyring() string {
	secret, err := keyring.GetAdminSecret()
	if err == nil {
		return secret
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("Could not read admin secret from keyring", "error", err)
	}
	return ""
}
