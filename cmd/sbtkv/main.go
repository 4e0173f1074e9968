// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/sbtkv/tool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sbtkv [command] (flags)",
	Short: "sbtkv introspection and benchmarking tool",
	Long: `
Read and modify sbtkv snapshot files, inspect the tree they load into, back
them up and restore them, and benchmark insert and search latency.
`,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(tool.New().Commands...)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
