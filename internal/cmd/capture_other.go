//go:build !linux

package cmd

import "github.com/spf13/cobra"

// GPIO capture needs the Linux character device.
func addPlatformCommands(*cobra.Command) {}
