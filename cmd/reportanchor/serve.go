package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/bobg/reportanchor/store/metrics"
	"github.com/bobg/reportanchor/store/rpc"
)

func (c maincmd) serve(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		addr        = fs.String("addr", ":8765", "gRPC listen address")
		metricsAddr = fs.String("metrics", ":9090", "Prometheus listen address (empty to disable)")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	s, err := c.store(ctx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gs := grpc.NewServer()
	rpc.Register(gs, metrics.New(s, reg))

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", *addr)
	}
	defer lis.Close()

	log.Printf("Listening on %s", lis.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		return nil
	})

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		hs := &http.Server{Addr: *metricsAddr, Handler: mux}

		log.Printf("Serving metrics on %s", *metricsAddr)

		g.Go(func() error {
			err := hs.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.Wrap(err, "serving metrics")
		})
		g.Go(func() error {
			<-ctx.Done()
			return hs.Shutdown(context.Background())
		})
	}

	return g.Wait()
}
