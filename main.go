// Package main is the entry point of the gitnapped CLI.
package main

import (
	"github.com/huangsam/gitnapped/cmd"
	"github.com/huangsam/gitnapped/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("gitnapped failed", err)
	}
}
