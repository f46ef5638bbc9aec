// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of cocontrib",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), version, vcsRevision())
	},
}

// vcsRevision returns the short commit the binary was built from, if recorded.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

func printVersion(w io.Writer, v, revision string) {
	if revision != "" {
		v += " (" + revision + ")"
	}
	fmt.Fprintf(w, "cocontrib %s %s/%s %s\n", v, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
