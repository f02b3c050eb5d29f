package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Erreur: %v\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Init(logging.Options{Level: c.GetLogLevel(), Pretty: c.GetEnv() == "DEV"})

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	root := newRootCmd(c.GetAppName(), func(out io.Writer) (*app, error) {
		return newApp(c.GetAPIBaseURL(), store, out)
	})
	return root.ExecuteContext(ctx)
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
