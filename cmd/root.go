/*
Copyright © 2021 Billy G. Allie <bill.allie@defiant.mug.org>

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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bgallie/enigma/wiring"
)

var (
	GitCommit  string = "not set"
	GitBranch  string = "not set"
	GitState   string = "not set"
	GitSummary string = "not set"
	BuildDate  string = "not set"
	Version    string = "dev"
)

const (
	configName       = ".enigma"
	envPrefix        = "ENIGMA"
	defaultReflector = "B"
)

// options is the state shared by every command of one command tree.
type options struct {
	cfgFile string
	verbose int
	quiet   bool
	v       *viper.Viper
	log     *Logger
	table   *wiring.Table
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		NewLogger(rootCmd.ErrOrStderr(), LogQuiet).Error("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "enigma",
		Short: "A rotor cipher machine",
		Long: `enigma enciphers text letter by letter through a plugboard, a chain of
rotors and a reflector, stepping the rotors after every character.  Running
a message through an identically configured machine deciphers it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig(cmd)
		},
	}

	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\n  commit: %s (%s, %s)\n  %s\n  built: %s\n",
		GitCommit, GitBranch, GitState, GitSummary, BuildDate))

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.enigma.yaml)")
	fs.String("table", "", "YAML file of rotor and reflector wirings (default is the builtin table)")
	fs.String("reflector", defaultReflector, "reflector name from the wiring table, or a 26 letter wiring")
	fs.Bool("stepNonAlpha", true, "step the rotors on characters that are not letters")
	fs.CountVarP(&opts.verbose, "verbose", "v", "increase logging (repeat for more)")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")
	cobra.CheckErr(bindFlags(opts.v, fs, "table", "reflector", "stepNonAlpha"))

	cmd.AddCommand(newEncryptCmd(opts, false))
	cmd.AddCommand(newEncryptCmd(opts, true))
	cmd.AddCommand(newDecryptCmd(opts, false))
	cmd.AddCommand(newDecryptCmd(opts, true))
	cmd.AddCommand(newInteractiveCmd(opts))
	cmd.AddCommand(newRotorsCmd(opts))

	return cmd
}

// bindFlags makes each named flag the default for the viper key of the same
// name, so config file and environment values apply when the flag is unset.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// initConfig reads in config file and ENV variables if set.
func (o *options) initConfig(cmd *cobra.Command) error {
	level := LogNormal + LogLevel(o.verbose)
	if o.quiet {
		level = LogQuiet
	}
	o.log = NewLogger(cmd.ErrOrStderr(), level)

	v := o.v
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv() // read in environment variables that match

	if o.cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(o.cfgFile)
		if filepath.Ext(o.cfgFile) == "" {
			v.SetConfigType("yaml")
		}
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// Search config in home directory with name ".enigma" (without extension).
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	// If a config file is found, read it in.  A missing file is not an
	// error; it is created when counters are saved.
	if err := v.ReadInConfig(); err == nil {
		o.log.Verbose("Using config file: %s", v.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return o.loadTable()
}

func (o *options) loadTable() error {
	var err error
	if path := o.v.GetString("table"); path != "" {
		o.log.Verbose("Using wiring table: %s", path)
		o.table, err = wiring.LoadFile(path)
	} else {
		o.table, err = wiring.Default()
	}
	return err
}

// reflectorWiring resolves the configured reflector, which is either a name
// from the wiring table or a wiring string.
func (o *options) reflectorWiring() (string, error) {
	name := strings.TrimSpace(o.v.GetString("reflector"))
	if name == "" {
		name = defaultReflector
	}
	if w, err := o.table.Reflector(name); err == nil {
		return w, nil
	}
	if len(name) == 26 {
		return strings.ToUpper(name), nil
	}
	return o.table.Reflector(name)
}

// configPath is where counters are written: the file that was read, the
// --config file, or $HOME/.enigma.yaml.
func (o *options) configPath() (string, error) {
	if used := o.v.ConfigFileUsed(); used != "" {
		return used, nil
	}
	if o.cfgFile != "" {
		return o.cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func (o *options) writeConfig() error {
	path, err := o.configPath()
	if err != nil {
		return err
	}
	if err := o.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	o.log.Debug("Wrote config file: %s", path)
	return nil
}
