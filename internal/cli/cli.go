// Package cli dispatches the kvcluster binary's subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"kvcluster/internal/command"
	"kvcluster/internal/config"
	"kvcluster/internal/logger"
	"kvcluster/internal/respval"
	"kvcluster/internal/router"
)

// Execute dispatches CLI subcommands.
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[kvcluster] ")

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "get":
		return runGet(args[1:])
	case "set":
		return runSet(args[1:])
	case "del":
		return runDel(args[1:])
	case "mget":
		return runMGet(args[1:])
	case "ping":
		return runPing(args[1:])
	case "verify":
		return runVerify(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println("kvcluster 0.1.0-dev")
		return 0
	default:
		log.Printf("Unknown subcommand: %s", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`kvcluster - client-side router for a sharded key-value cluster

Usage:
  kvcluster get    -config FILE KEY
  kvcluster set    -config FILE KEY VALUE
  kvcluster del    -config FILE KEY [KEY ...]
  kvcluster mget   -config FILE KEY [KEY ...]
  kvcluster ping   -config FILE
  kvcluster verify -config FILE KEY   (cross-check via an independent go-redis client)
  kvcluster version`)
}

func loadConfigFromArgs(name string, args []string) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	var configPath string
	fs.StringVar(&configPath, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&configPath, "c", "", "Configuration file path (YAML)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if configPath == "" {
		return nil, nil, fmt.Errorf("the --config flag is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func newRouter(cfg *config.Config) (*router.Router, error) {
	if err := logger.Init(cfg.ResolvedLogDir(), parseLevel(cfg.Log.Level), cfg.Log.Prefix); err != nil {
		return nil, err
	}
	dialTimeout, err := cfg.DialTimeout()
	if err != nil {
		return nil, err
	}
	return router.New(router.Options{
		Bootstrap:   cfg.Cluster.Bootstrap,
		DialTimeout: dialTimeout,
		MaxRetry:    cfg.Cluster.MaxRetry,
		RefreshQPS:  cfg.Cluster.RefreshQPS,
	}), nil
}

func parseLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}

func runGet(args []string) int {
	cfg, rest, err := loadConfigFromArgs("get", args)
	if err != nil {
		return fail(err)
	}
	if len(rest) != 1 {
		log.Println("usage: kvcluster get -config FILE KEY")
		return 2
	}
	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	out, err := router.Send(context.Background(), r, command.Get{Key: rest[0]})
	if err != nil {
		return fail(err)
	}
	if !out.Found {
		fmt.Println("(nil)")
		return 0
	}
	fmt.Println(out.Value)
	return 0
}

func runSet(args []string) int {
	cfg, rest, err := loadConfigFromArgs("set", args)
	if err != nil {
		return fail(err)
	}
	if len(rest) != 2 {
		log.Println("usage: kvcluster set -config FILE KEY VALUE")
		return 2
	}
	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	out, err := router.Send(context.Background(), r, command.Set{Key: rest[0], Value: rest[1]})
	if err != nil {
		return fail(err)
	}
	fmt.Println(out)
	return 0
}

func runDel(args []string) int {
	cfg, rest, err := loadConfigFromArgs("del", args)
	if err != nil {
		return fail(err)
	}
	if len(rest) == 0 {
		log.Println("usage: kvcluster del -config FILE KEY [KEY ...]")
		return 2
	}
	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	out, err := router.Send(context.Background(), r, command.Del{Keys: rest})
	if err != nil {
		return fail(err)
	}
	fmt.Println(out)
	return 0
}

func runMGet(args []string) int {
	cfg, rest, err := loadConfigFromArgs("mget", args)
	if err != nil {
		return fail(err)
	}
	if len(rest) == 0 {
		log.Println("usage: kvcluster mget -config FILE KEY [KEY ...]")
		return 2
	}
	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	out, err := router.Send(context.Background(), r, command.MGet{Keys: rest})
	if err != nil {
		return fail(err)
	}
	for _, v := range out {
		fmt.Println(v)
	}
	return 0
}

func runPing(args []string) int {
	cfg, _, err := loadConfigFromArgs("ping", args)
	if err != nil {
		return fail(err)
	}
	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	out, err := router.Send(context.Background(), r, command.Directed{Name: "PING"})
	if err != nil {
		return fail(err)
	}
	s, err := respval.ToString(out)
	if err != nil {
		return fail(err)
	}
	fmt.Println(s)
	return 0
}

// runVerify cross-checks a GET against an independent go-redis cluster
// client, useful as a smoke test that the router and a battle-tested
// client agree (SPEC_FULL.md §2.4).
func runVerify(args []string) int {
	cfg, rest, err := loadConfigFromArgs("verify", args)
	if err != nil {
		return fail(err)
	}
	if len(rest) != 1 {
		log.Println("usage: kvcluster verify -config FILE KEY")
		return 2
	}

	r, err := newRouter(cfg)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	ours, err := router.Send(context.Background(), r, command.Get{Key: rest[0]})
	if err != nil {
		return fail(err)
	}

	client := goredis.NewClusterClient(&goredis.ClusterOptions{
		Addrs: []string{cfg.Cluster.Bootstrap},
	})
	defer client.Close()

	theirs, err := client.Get(context.Background(), rest[0]).Result()
	theirsFound := true
	if err == goredis.Nil {
		theirsFound = false
		err = nil
	}
	if err != nil {
		return fail(err)
	}

	if ours.Found != theirsFound || (ours.Found && ours.Value != theirs) {
		log.Printf("mismatch: router={found=%t value=%q} go-redis={found=%t value=%q}",
			ours.Found, ours.Value, theirsFound, theirs)
		return 1
	}
	fmt.Println("match")
	return 0
}

func fail(err error) int {
	log.Printf("error: %v", err)
	return 1
}
