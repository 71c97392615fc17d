package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/ashprao/chatbox/internal/app"
	"github.com/ashprao/chatbox/internal/constants"
)

func main() {
	flagSet := pflag.NewFlagSet("chatbox", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "Path to configuration file (default: configs/config.yaml)")
	logLevel := flagSet.String("log-level", "", "Log level (debug, info, warn, error)")
	storagePath := flagSet.String("storage", "", "Storage directory path (default: the app storage directory)")
	storageType := flagSet.String("storage-type", "", "Storage backend (file, sqlite, memory)")
	apiHost := flagSet.String("api-host", "", "OpenAI-compatible API host, overrides the saved setting")
	version := flagSet.Bool("version", false, "Show version information")
	help := flagSet.BoolP("help", "h", false, "Show help information")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			showHelp(flagSet)
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	// Show version
	if *version {
		fmt.Printf("%s v%s\n", constants.AppName, constants.AppVersion)
		fmt.Println("A desktop chat client for OpenAI-compatible APIs")
		return
	}

	// Show help
	if *help {
		showHelp(flagSet)
		return
	}

	// Create application configuration
	appConfig := app.AppConfig{
		ConfigPath:  *configPath,
		LogLevel:    *logLevel,
		StoragePath: *storagePath,
		StorageType: *storageType,
		APIHost:     *apiHost,
	}

	// Create and run application
	application, err := app.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	// Run the application
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}

func showHelp(flagSet *pflag.FlagSet) {
	fmt.Printf("%s - A desktop chat client for OpenAI-compatible APIs\n", constants.AppName)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  chatbox [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Print(flagSet.FlagUsages())
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  OPENAI_API_KEY     API key used when none is saved")
	fmt.Println("  OPENAI_API_HOST    API host used when the saved host is the default")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  chatbox")
	fmt.Println("  chatbox --config custom-config.yaml")
	fmt.Println("  chatbox --log-level debug --storage /tmp/chat-data --storage-type sqlite")
	fmt.Println("  chatbox --api-host http://localhost:8080")
}
