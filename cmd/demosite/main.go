// Command demosite starts a fake shop with switchable privacy profiles,
// for demonstrating the analyzer without touching real sites.
// Usage: go run ./cmd/demosite [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"privyscope/internal/demosite"
)

func main() {
	cfg := demosite.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   PrivyScope Demo Shop")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Version 1 is a privacy-friendly shop, version 2 the same shop")
	fmt.Println("after it went ad-heavy. Flip versions with:")
	fmt.Println()
	fmt.Printf("  curl -X POST -d 'path=/privacy&version=2' localhost:%d/demo/set-version\n", cfg.Port)
	fmt.Println()
	fmt.Println("then analyze the front page and compare scores.")
	fmt.Println()

	site := demosite.NewDemoSite(cfg)
	if err := site.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
