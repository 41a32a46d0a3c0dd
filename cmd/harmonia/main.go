// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the harmonia CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the harmonia CLI.
var rootCmd = &cobra.Command{
	Use:   "harmonia",
	Short: "Turn sung melodies into harmonized vocal scores",
	Long: `harmonia reads the pitch and onset analysis of a sung recording and
produces a notated melody with two derived harmony voices (alto and tenor),
snapped to the song's key and quantized to a rhythmic grid.

Each surface is a subcommand: transcribe handles one analysis file, batch
handles many, and serve exposes the same pipeline over HTTP.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./harmonia.yaml or ~/.config/harmonia/config.yaml)")
	rootCmd.PersistentFlags().String("style", "", "style preset: "+strings.Join(presetNames(), ", "))
	rootCmd.PersistentFlags().String("presets-file", "", "YAML file with additional style presets")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("harmonia")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "harmonia"))
		}
	}

	viper.SetEnvPrefix("HARMONIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
