/*
Copyright 2026 Vermillion Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	vermillion "github.com/vermillionhq/vermillion"
	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/database"
	"github.com/vermillionhq/vermillion/internal/notification"
)

// Vermillion wraps the root cobra command for the CLI.
type Vermillion struct {
	cmd *cobra.Command
}

// vermillionInstance carries the initialized core and its configuration
// into every subcommand.
type vermillionInstance struct {
	vermillion *vermillion.Vermillion
	cnf        *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the core before any
// subcommand runs.
func preRun(app *vermillionInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newVermillion, err := setupVermillion(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.vermillion = newVermillion
		app.cnf = cnf

		return nil
	}
}

// setupVermillion connects the data source and constructs the core.
func setupVermillion(cfg *config.Configuration) (*vermillion.Vermillion, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newVermillion, err := vermillion.NewVermillion(db)
	if err != nil {
		return nil, fmt.Errorf("error creating vermillion: %v", err)
	}
	return newVermillion, nil
}

// NewCLI assembles the root command and its subcommands.
func NewCLI() *Vermillion {
	var configFile string
	v := &vermillionInstance{}

	var rootCmd = &cobra.Command{
		Use:   "vermillion",
		Short: "Payment orchestration and ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./vermillion.json", "Configuration file for vermillion")
	rootCmd.PersistentPreRunE = preRun(v, &configFile)

	rootCmd.AddCommand(serverCommands(v))
	rootCmd.AddCommand(workerCommands(v))
	rootCmd.AddCommand(migrateCommands(v))

	return &Vermillion{cmd: rootCmd}
}

func (w Vermillion) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
