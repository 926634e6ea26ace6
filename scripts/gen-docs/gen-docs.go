// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

//go:generate go run gen-docs.go gen-docs --path ../../docs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	relayprobecmd "github.com/telekom/relayprobe/cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"
)

const (
	// configDoc is the file name of the configuration key reference
	configDoc = "relayprobe_configuration.md"
	envPrefix = "RELAYPROBE_"
)

func main() {
	execute()
}

func execute() {
	rootCmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generates docs for relayprobe",
	}
	rootCmd.AddCommand(NewCmdGenDocs())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewCmdGenDocs creates a new gen-docs command
func NewCmdGenDocs() *cobra.Command {
	var docPath string

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generate markdown documentation",
		Long: "Generate the markdown documentation of the relayprobe commands and a reference\n" +
			"of the configuration keys and environment variables bound to their flags",
		RunE: runGenDocs(&docPath),
	}

	cmd.PersistentFlags().StringVar(&docPath, "path", "docs", "directory path where the markdown files will be created")

	return cmd
}

// runGenDocs writes one markdown file per command and the configuration reference
func runGenDocs(path *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		return genDocs(relayprobecmd.BuildCmd(""), *path)
	}
}

func genDocs(root *cobra.Command, path string) error {
	root.DisableAutoGenTag = false
	if err := doc.GenMarkdownTree(root, path); err != nil {
		return fmt.Errorf("failed to generate docs: %w", err)
	}

	f, err := os.Create(filepath.Clean(filepath.Join(path, configDoc)))
	if err != nil {
		return fmt.Errorf("failed to create configuration reference: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err = writeConfigKeys(f, root); err != nil {
		return fmt.Errorf("failed to write configuration reference: %w", err)
	}
	return f.Close()
}

// configKey is a configuration key documented next to the flag it is bound to
type configKey struct {
	key     string
	flag    string
	def     string
	usage   string
	command string
}

// env returns the environment variable viper reads the key from
func (k configKey) env() string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(k.key, ".", "_"))
}

// collectConfigKeys returns the flags of the command tree bound to a configuration key, sorted by key
func collectConfigKeys(root *cobra.Command) []configKey {
	var keys []configKey
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			bound := f.Annotations[relayprobecmd.ConfigKeyAnnotation]
			if len(bound) == 0 {
				return
			}
			keys = append(keys, configKey{
				key:     bound[0],
				flag:    f.Name,
				def:     f.DefValue,
				usage:   f.Usage,
				command: c.CommandPath(),
			})
		})
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)

	slices.SortFunc(keys, func(a, b configKey) int {
		return strings.Compare(a.key, b.key)
	})
	return keys
}

// writeConfigKeys writes the configuration reference as markdown tables, one per top level section
func writeConfigKeys(w io.Writer, root *cobra.Command) error {
	var b strings.Builder
	b.WriteString("## relayprobe configuration\n\n")
	b.WriteString("Every key can be set in the config file, as environment variable or as flag.\n")
	b.WriteString("Flags take precedence over the environment, which takes precedence over the config file.\n")

	section := ""
	for _, k := range collectConfigKeys(root) {
		if s, _, _ := strings.Cut(k.key, "."); s != section {
			section = s
			fmt.Fprintf(&b, "\n### %s\n\n", section)
			b.WriteString("| Key | Environment | Flag | Default | Description |\n")
			b.WriteString("|-----|-------------|------|---------|-------------|\n")
		}
		_, usage, found := strings.Cut(k.usage, ": ")
		if !found {
			usage = k.usage
		}
		def := "-"
		if k.def != "" {
			def = "`" + k.def + "`"
		}
		fmt.Fprintf(&b, "| `%s` | `%s` | `%s --%s` | %s | %s |\n",
			k.key, k.env(), k.command, k.flag, def, escapeCell(usage))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
