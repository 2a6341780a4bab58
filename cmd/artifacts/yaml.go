package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
	"gopkg.in/yaml.v3"
)

var yamlReplace bool

var yamlCmd = &cobra.Command{
	Use:   "yaml",
	Short: "Read and edit YAML config files",
}

var yamlShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Parse a YAML file and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := util.ReadYAML(args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	},
}

var yamlSetCmd = &cobra.Command{
	Use:   "set <file> <key> <value>",
	Short: "Set a dotted key in a YAML file, creating the file if needed",
	Long: `Set a dotted key (e.g. model.params.max_depth) in a YAML mapping file.
The value is parsed as YAML, so numbers, booleans and lists keep their types.
With --replace the existing file is removed and only the new key is written.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, key, raw := args[0], args[1], args[2]

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("failed to parse value %q: %w", raw, err)
		}

		doc := map[string]any{}
		if !yamlReplace {
			if _, err := os.Stat(path); err == nil {
				existing, err := util.ReadYAML(path)
				if err != nil {
					return err
				}
				if existing != nil {
					m, ok := existing.(map[string]any)
					if !ok {
						return fmt.Errorf("%s does not hold a mapping", path)
					}
					doc = m
				}
			}
		}

		if err := setDotted(doc, strings.Split(key, "."), value); err != nil {
			return err
		}
		if err := util.WriteYAML(path, doc, yamlReplace); err != nil {
			return err
		}

		log.Info().Str("file", path).Str("key", key).Msg("YAML key updated")
		return nil
	},
}

// setDotted assigns value at the nested path, creating intermediate mappings
func setDotted(doc map[string]any, path []string, value any) error {
	for i, part := range path {
		if part == "" {
			return fmt.Errorf("empty key segment in %q", strings.Join(path, "."))
		}
		if i == len(path)-1 {
			doc[part] = value
			return nil
		}
		next, ok := doc[part]
		if !ok || next == nil {
			child := map[string]any{}
			doc[part] = child
			doc = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is not a mapping", strings.Join(path[:i+1], "."))
		}
		doc = child
	}
	return nil
}

func init() {
	rootCmd.AddCommand(yamlCmd)
	yamlCmd.AddCommand(yamlShowCmd)
	yamlCmd.AddCommand(yamlSetCmd)

	yamlSetCmd.Flags().BoolVar(&yamlReplace, "replace", false, "Remove the existing file before writing")
}
