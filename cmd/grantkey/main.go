// Package main provides a one-shot utility for access grant key generation.
//
// It emits the asymmetric keypair used to sign client access links.
package main

import (
	"os"

	"github.com/ashmont/clientdocs/internal/platform/config"
	"github.com/ashmont/clientdocs/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate access grant key: %v", err)
	}
}
