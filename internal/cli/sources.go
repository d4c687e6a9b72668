package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustlens/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the source reputation dataset",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every outlet in the reference dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tNAME\tTIER\tBIAS\tTRUST\tTRANSPARENCY\tSCORE")
		for _, p := range registry.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				p.Domain, p.Name, p.CategoryTier, p.BiasLabel, p.TrustScore, p.TransparencyScore, source.SourceScore(p))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\n%d sources\n", registry.Len())
		return nil
	},
}

var sourcesResolveCmd = &cobra.Command{
	Use:   "resolve <name-or-url>",
	Short: "Show how a source string resolves",
	Long: `Resolve shows which dataset entry a source name, domain or URL maps to,
and which rule matched. Unmatched sources get the neutral default profile.

Example:
  trustlens sources resolve "BBC News"
  trustlens sources resolve https://www.theguardian.com/world/2024/story`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		logger, err := newLogger(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}

		res := source.NewResolver(registry, logger).Resolve(strings.Join(args, " "))
		p := res.Profile
		fmt.Printf("Name:          %s\n", p.Name)
		fmt.Printf("Domain:        %s\n", p.Domain)
		fmt.Printf("Tier:          %s\n", p.CategoryTier)
		fmt.Printf("Bias:          %s\n", p.BiasLabel)
		fmt.Printf("Trust:         %d\n", p.TrustScore)
		fmt.Printf("Transparency:  %d\n", p.TransparencyScore)
		fmt.Printf("Score:         %d\n", res.Score)
		fmt.Printf("Matched by:    %s\n", res.Rule)
		return nil
	},
}

func loadRegistry() (*source.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return source.Load(cfg.Sources.Path)
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesResolveCmd)
}
