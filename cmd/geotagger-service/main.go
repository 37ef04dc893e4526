package main

import (
	"flag"
	"os"

	"github.com/Jetrca92/geotagger-backend/geotaggerservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override GEOTAGGER_BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if err := geotaggerservice.Run(*buildTarget); err != nil {
		os.Exit(1)
	}
}
