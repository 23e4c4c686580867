/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ares-safety/ares/server"
	"github.com/ares-safety/ares/shared"
	"github.com/ares-safety/ares/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start an ares server",
	Long: `The ares server houses the account store, the emergency contact
list & the SOS alert fan-out used by the mobile clients.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	// TODO: Make this required, when not in dev mode
	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *shared.ServerConfig {
	config = viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	exists, err := utils.FileExist(serverConfigFile)
	if err != nil || !exists {
		log.Panic(fmt.Sprintf("no server config file at %q, pass one with --sconfig", serverConfigFile))
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	serverConfig := shared.ServerConfig{}
	if err := config.Unmarshal(&serverConfig); err != nil {
		log.Panic(fmt.Sprintf("error parsing server config file: %v", err))
	}

	return &serverConfig
}

func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	return filepath.Join(configDir, "dev", "config", "server.yml")
}
