package main

import (
	"flag"
	"fmt"
	"os"

	"consoled/pkg/store"
)

// inspect dumps the raw keyspace of a consoled pebble store. Run it
// against a stopped server's data directory.
func main() {
	var (
		p      = flag.String("db", "", "pebble storage path")
		prefix = flag.String("prefix", "", "key prefix filter (e.g. console:, user:, page:)")
		values = flag.Bool("values", false, "print record bodies as well as keys")
	)
	flag.Parse()
	if *p == "" {
		fmt.Fprintln(os.Stderr, "-db required")
		os.Exit(2)
	}

	if err := store.Open(*p); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open pebble at %s: %v\n", *p, err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	keys, err := store.ListKeys(*prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list keys: %v\n", err)
		os.Exit(1)
	}
	for _, k := range keys {
		if !*values {
			fmt.Println(k)
			continue
		}
		v, err := store.GetKey(k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", k, err)
			continue
		}
		fmt.Printf("%s\t%s\n", k, v)
	}
	fmt.Fprintf(os.Stderr, "%d keys\n", len(keys))
}
