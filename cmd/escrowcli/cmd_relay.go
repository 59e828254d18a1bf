package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/iov-one/zkescrow/ledger"
	"github.com/iov-one/zkescrow/x/oracle"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdRelay(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Fulfill pending oracle executions on the local ledger. Each execution is
proven locally and resolved with a transaction signed by the relay key,
which receives the execution tip. The relay key must be a prover of the
deployed image.

Only executions of the SHA-256 image are proven. By default the relay runs
until interrupted.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl     = fl.String("home", defaultHome(), "Directory of the local ledger. You can use ZKESCROW_HOME environment variable to set it.")
		keyPathFl  = fl.String("key", defaultKeyPath(), "Path to the private key of the relay.")
		logFl      = fl.String("log-level", env("ZKESCROW_LOG_LEVEL", "info"), "Log level: debug, info, error or none.")
		intervalFl = fl.Duration("interval", 2*time.Second, "Time between two relay passes.")
		onceFl     = fl.Bool("once", false, "Run a single pass and exit.")
		metricsFl  = fl.String("metrics", "", "Address to serve prometheus metrics at, for example :9102. Disabled if empty.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, logger)
	if err != nil {
		return err
	}
	defer n.close()

	relay := oracle.NewRelay(n.ledger, n.conf.OracleProgram, key, logger)
	relay.RegisterProver(oracle.SHA256ImageID, oracle.SHA256Prover{})

	// Resolved executions are persisted and the slot advanced, the same
	// way submit does it.
	done := func(ctx context.Context, resolved int) error {
		if resolved == 0 {
			return nil
		}
		if _, err := n.ledger.AdvanceSlot(1); err != nil {
			return err
		}
		if err := n.commit(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(output, "%d executions resolved\n", resolved)
		return err
	}

	if *onceFl {
		resolved, err := relay.RunOnce(context.Background())
		if derr := done(context.Background(), resolved); derr != nil {
			return derr
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *metricsFl != "" {
		stop, err := serveMetrics(*metricsFl, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := relay.Run(ctx, *intervalFl, done); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// metricsHandler serves the ledger counters registered with the default
// prometheus registry.
func metricsHandler() http.Handler {
	ledger.Metrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// serveMetrics starts an http server exposing metrics at given address. The
// returned function shuts it down.
func serveMetrics(addr string, logger log.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot listen for metrics: %s", err)
	}
	srv := &http.Server{Handler: metricsHandler()}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	logger.Info("metrics server started", "address", ln.Addr().String(), "endpoint", "/metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
