package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/hanrei/internal/pipeline"
	"github.com/ppiankov/hanrei/internal/statute"
	"github.com/spf13/cobra"
)

var directoryPath string

// statuteCmd groups the statute directory and text commands
var statuteCmd = &cobra.Command{
	Use:   "statute",
	Short: "Build and query the statute directory",
}

var statuteBuildCmd = &cobra.Command{
	Use:   "build <list.json> <out.json>",
	Short: "Convert the upstream statute list into a name-to-id directory",
	Long: `Build turns a [{"name": ..., "num": ...}] statute list into the flat
{"name": "num"} directory used for citation lookup. List order is kept.

Example:
  hanrei statute build list.json ~/.hanrei/name_num.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open list: %w", err)
		}
		defer func() { _ = in.Close() }()

		entries, err := statute.ReadList(in)
		if err != nil {
			return err
		}
		dir := statute.NewDirectory(entries)

		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("create directory file: %w", err)
		}
		defer func() {
			if closeErr := out.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close directory file: %w", closeErr)
			}
		}()

		if err := statute.WriteDirectory(out, dir); err != nil {
			return fmt.Errorf("write directory: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Wrote %d statutes to %s\n", dir.Len(), args[1])
		return nil
	},
}

var statuteLookupCmd = &cobra.Command{
	Use:   "lookup <name> [keyword...]",
	Short: "Find statute ids by exact name or keywords",
	Long: `Lookup prints the id for an exact statute name. When there is no exact
match, every argument is used as a keyword and all statutes containing
any keyword are listed in directory order.

Example:
  hanrei statute lookup 著作権法
  hanrei statute lookup 著作権`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Statute.DirectoryPath
		if directoryPath != "" {
			path = directoryPath
		}

		dir, err := statute.LoadDirectoryFile(path)
		if err != nil {
			return err
		}

		name := strings.Join(args, " ")
		if id := dir.LookupExact(name); id != "" {
			fmt.Printf("%s\t%s\n", name, id)
			return nil
		}

		matches := dir.LookupByKeywords(args)
		if len(matches) == 0 {
			return fmt.Errorf("no statute matches %q", name)
		}
		for _, e := range matches {
			fmt.Printf("%s\t%s\n", e.DisplayName, e.CanonicalID)
		}
		return nil
	},
}

var statuteTextCmd = &cobra.Command{
	Use:   "text <canonical_id>",
	Short: "Fetch and print a statute's text from the e-Gov law API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("no-cache") && noCache {
			cfg.Cache.Enabled = false
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
		defer cancel()

		text, err := pipeline.NewStatuteFetcher(cfg).FetchStatuteText(ctx, args[0])
		if errors.Is(err, statute.ErrNotFound) {
			return fmt.Errorf("statute %s not found", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statuteCmd)
	statuteCmd.AddCommand(statuteBuildCmd)
	statuteCmd.AddCommand(statuteLookupCmd)
	statuteCmd.AddCommand(statuteTextCmd)

	statuteLookupCmd.Flags().StringVar(&directoryPath, "directory", "", "statute directory file (default from config)")
	statuteTextCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable statute text cache (force fresh fetch)")
}
