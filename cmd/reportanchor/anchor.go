package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/events"
)

func (c maincmd) anchor(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		keyFile   = fs.String("key", "reporter.key", "reporter private key file")
		walletStr = fs.String("wallet", "", "analyzed wallet identity (base58)")
		hashStr   = fs.String("hash", "", "report digest (hex)")
		brokers   = fs.String("kafka", "", "comma-separated Kafka seed brokers for events")
		topic     = fs.String("topic", "reportanchor-events", "Kafka topic for events")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	if *walletStr == "" || *hashStr == "" {
		return errors.New("must supply -wallet and -hash")
	}
	wallet, err := reportanchor.IdentityFromString(*walletStr)
	if err != nil {
		return errors.Wrap(err, "parsing -wallet")
	}
	hash, err := reportanchor.DigestFromHex(*hashStr)
	if err != nil {
		return errors.Wrap(err, "parsing -hash")
	}
	key, err := readKey(*keyFile)
	if err != nil {
		return err
	}

	sinks := events.Fanout{&events.LogSink{}}
	if *brokers != "" {
		client, err := events.DialKafka(strings.Split(*brokers, ","))
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, events.NewKafkaSink(client, *topic))
	}

	reg, err := c.registry(ctx, reportanchor.WithSink(sinks))
	if err != nil {
		return err
	}

	rep, err := reg.AnchorSigned(ctx, reportanchor.Sign(key, wallet, hash))
	if errors.Is(err, reportanchor.ErrEmit) {
		log.Printf("WARNING: %s", err)
		err = nil
	}
	if err != nil {
		return errors.Wrap(err, "anchoring")
	}
	return printJSON(rep)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "writing JSON")
}
