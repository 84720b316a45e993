/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for silentlog.
package cmd

import (
	"github.com/spf13/cobra"

	"bennypowers.dev/silentlog/cmd/version"
	"bennypowers.dev/silentlog/fs"
	"bennypowers.dev/silentlog/migrate"
)

var rootCmd = newRootCmd(fs.NewOSFileSystem())

func newRootCmd(filesystem fs.FileSystem) *cobra.Command {
	c := &cobra.Command{
		Use:   "silentlog",
		Short: "Migrate Serial output calls to the silent mode logger",
		Long: `silentlog rewrites Serial.print, Serial.println and Serial.printf calls in
src/**/*.cpp into the Serial_print, Serial_println and Serial_printf wrappers,
and adds the logger header include after the last existing include.

Files are only written when their content changes, so running it again is a no-op.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := migrate.New(filesystem, cmd.OutOrStdout()).Run()
			return err
		},
	}
	c.AddCommand(version.Cmd)
	return c
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
