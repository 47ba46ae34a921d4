// chatd is a multi-user chat server spoken over SSH. Point an ssh
// client at it and start typing; /help lists the commands.
package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat"
	"github.com/unrenamed/chatd-sub000/internal/logging"
	"github.com/unrenamed/chatd-sub000/internal/motd"
	"github.com/unrenamed/chatd-sub000/internal/session"
	"github.com/unrenamed/chatd-sub000/internal/sshd"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	host      string
	port      int
	identity  string
	oplist    string
	whitelist string
	motdPath  string
	logPath   string
	debug     int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "chatd",
		Short:         "A multi-user chat server over SSH",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.host, "host", "", "address to listen on (default: all interfaces)")
	fl.IntVar(&opts.port, "port", 2222, "port to listen on")
	fl.StringVarP(&opts.identity, "identity", "i", "", "host private key file (default: ephemeral)")
	fl.StringVar(&opts.oplist, "oplist", "", "operator public keys file")
	fl.StringVar(&opts.whitelist, "whitelist", "", "trusted public keys file, enables whitelist mode")
	fl.StringVar(&opts.motdPath, "motd", "", "message of the day file")
	fl.StringVar(&opts.logPath, "log", "", "log file path")
	fl.CountVarP(&opts.debug, "debug", "d", "increase log verbosity (repeatable)")
	return cmd
}

func run(opts options) error {
	if err := logging.Setup(opts.debug, opts.logPath); err != nil {
		return err
	}

	a, err := auth.New(opts.oplist, opts.whitelist)
	if err != nil {
		return err
	}
	sweeper := a.StartSweeper()
	defer sweeper.Stop()

	motdText := motd.Default
	if opts.motdPath != "" {
		if motdText, err = motd.Load(opts.motdPath); err != nil {
			return err
		}
	}
	room := chat.NewRoom(motdText)
	if opts.motdPath != "" {
		watcher, err := motd.Watch(opts.motdPath, room.SetMotd)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	repo := session.NewRepository(room, a, version)
	srv, err := sshd.NewServer(sshd.Config{
		Host:        opts.host,
		Port:        opts.port,
		HostKeyPath: opts.identity,
		Version:     "chatd",
	}, a, repo)
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		log.WithField("signal", sig.String()).Info("shutting down")
		srv.Close()
	}()

	log.WithFields(log.Fields{
		"version":   version,
		"whitelist": a.IsEnabled(),
		"operators": a.HasOperators(),
	}).Info("starting chatd")
	return srv.ListenAndServe()
}
