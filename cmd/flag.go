// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConfigKeyAnnotation is the flag annotation holding the bound configuration key
const ConfigKeyAnnotation = "relayprobe_config_key"

// Flag binds a command line flag to a configuration key
type Flag struct {
	// config is the viper key, e.g. "source.http.url"
	config string
	// cli is the flag name, e.g. "sourceUrl"
	cli string
}

type StringFlag struct {
	f *Flag
}

type BoolFlag struct {
	f *Flag
}

type IntFlag struct {
	f *Flag
}

type IntSliceFlag struct {
	f *Flag
}

type DurationFlag struct {
	f *Flag
}

// NewFlag returns a flag named cli that is bound to the config key
func NewFlag(config, cli string) *Flag {
	return &Flag{config: config, cli: cli}
}

func (f *Flag) String() *StringFlag {
	return &StringFlag{f: f}
}

func (f *Flag) Bool() *BoolFlag {
	return &BoolFlag{f: f}
}

func (f *Flag) Int() *IntFlag {
	return &IntFlag{f: f}
}

func (f *Flag) IntSlice() *IntSliceFlag {
	return &IntSliceFlag{f: f}
}

func (f *Flag) Duration() *DurationFlag {
	return &DurationFlag{f: f}
}

// Bind registers the flag on cmd and binds it to the config key
func (s *StringFlag) Bind(cmd *cobra.Command, value, usage string) {
	cmd.Flags().String(s.f.cli, value, usage)
	s.f.bind(cmd)
}

// Bind registers the flag on cmd and binds it to the config key
func (b *BoolFlag) Bind(cmd *cobra.Command, value bool, usage string) {
	cmd.Flags().Bool(b.f.cli, value, usage)
	b.f.bind(cmd)
}

// Bind registers the flag on cmd and binds it to the config key
func (i *IntFlag) Bind(cmd *cobra.Command, value int, usage string) {
	cmd.Flags().Int(i.f.cli, value, usage)
	i.f.bind(cmd)
}

// Bind registers the flag on cmd and binds it to the config key
func (i *IntSliceFlag) Bind(cmd *cobra.Command, value []int, usage string) {
	cmd.Flags().IntSlice(i.f.cli, value, usage)
	i.f.bind(cmd)
}

// Bind registers the flag on cmd and binds it to the config key
func (d *DurationFlag) Bind(cmd *cobra.Command, value time.Duration, usage string) {
	cmd.Flags().Duration(d.f.cli, value, usage)
	d.f.bind(cmd)
}

func (f *Flag) bind(cmd *cobra.Command) {
	// both only fail for an unknown flag, which cannot happen after registration
	_ = cmd.Flags().SetAnnotation(f.cli, ConfigKeyAnnotation, []string{f.config})
	_ = viper.BindPFlag(f.config, cmd.Flags().Lookup(f.cli))
}
