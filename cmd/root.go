/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command every subcommand (cmd/run.go's RunCmd)
// registers against in its own init(), mirroring cmd/1D.go/cmd/2D.go's
// rootCmd.AddCommand(...) pattern — the file those two relied on but
// that this pack's retrieval did not carry forward.
var rootCmd = &cobra.Command{
	Use:   "adaptoct",
	Short: "SFC-ordered octree node discovery and distribution engine",
	Long: `
adaptoct builds a regular octree grid, partitions its leaves across
simulated ranks, and runs the distributed continuous-Galerkin node-sort
over it, reporting global and per-rank node counts.`,
}

// Execute runs the root command; main.go's sole job is to call this.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.adaptoct.yaml)")
}

// initConfig resolves the config file search path through go-homedir
// when --config is not given, exactly as the cobra-cli generated
// template this module's go.mod (viper, go-homedir) was declared for
// does it.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".adaptoct")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
