package main

import (
	"os"

	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/dshills/docimpact/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
