package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// healthprobe hits a consoled /healthz endpoint and exits nonzero when the
// server is unhealthy. Intended as a container healthcheck command.
func main() {
	var (
		url     = flag.String("url", "http://127.0.0.1:8080/healthz", "health endpoint to probe")
		timeout = flag.Duration("timeout", 2*time.Second, "probe timeout")
	)
	flag.Parse()

	c := &fasthttp.Client{
		ReadTimeout:  *timeout,
		WriteTimeout: *timeout,
	}
	status, body, err := c.GetTimeout(nil, *url, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
	if status != fasthttp.StatusOK {
		fmt.Fprintf(os.Stderr, "unhealthy: status %d: %s\n", status, body)
		os.Exit(1)
	}
	fmt.Printf("%s\n", body)
}
