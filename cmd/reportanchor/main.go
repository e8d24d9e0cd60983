// Command reportanchor anchors report digests in a record store and verifies them.
//
// Usage:
//
//	reportanchor [-config FILE] [-owner ID] [-v] SUBCOMMAND ARGS...
//
// Subcommands:
//
//	hash     compute the digest of a report payload
//	keygen   create a reporter key
//	derive   print the address for a reporter and digest
//	anchor   anchor a digest, signed with a reporter key
//	verify   look up the record for a reporter and digest
//	list     list record addresses in the store
//	sync     copy records between the store and others
//	serve    expose the store over gRPC
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"

	"github.com/bobg/reportanchor"
	_ "github.com/bobg/reportanchor/store/bt"
	_ "github.com/bobg/reportanchor/store/file"
	_ "github.com/bobg/reportanchor/store/gcs"
	"github.com/bobg/reportanchor/store/logging"
	_ "github.com/bobg/reportanchor/store/lru"
	_ "github.com/bobg/reportanchor/store/mem"
	_ "github.com/bobg/reportanchor/store/metrics"
	_ "github.com/bobg/reportanchor/store/pg"
	_ "github.com/bobg/reportanchor/store/redis"
	_ "github.com/bobg/reportanchor/store/replica"
	_ "github.com/bobg/reportanchor/store/rpc"
	_ "github.com/bobg/reportanchor/store/sqlite3"
)

type maincmd struct {
	config  string
	owner   reportanchor.Identity
	verbose bool
}

func main() {
	var (
		config  = flag.String("config", "reportanchor.json", "path to store config file")
		owner   = flag.String("owner", reportanchor.DefaultOwner.String(), "registry owner identity (base58)")
		verbose = flag.Bool("v", false, "log store operations")
	)
	flag.Parse()

	ownerID, err := reportanchor.IdentityFromString(*owner)
	if err != nil {
		log.Fatalf("Parsing -owner: %s", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := maincmd{config: *config, owner: ownerID, verbose: *verbose}
	if err = subcmd.Run(ctx, c, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"anchor": c.anchor,
		"derive": c.derive,
		"hash":   c.hash,
		"keygen": c.keygen,
		"list":   c.list,
		"serve":  c.serve,
		"sync":   c.sync,
		"verify": c.verify,
	}
}

// store opens the store named in the config file.
func (c maincmd) store(ctx context.Context) (reportanchor.Store, error) {
	s, err := storeFromConfig(ctx, c.config)
	if err != nil {
		return nil, err
	}
	if c.verbose {
		s = logging.New(s)
	}
	return s, nil
}

func (c maincmd) registry(ctx context.Context, opts ...reportanchor.Option) (*reportanchor.Registry, error) {
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	return reportanchor.NewRegistry(s, c.owner, opts...), nil
}
