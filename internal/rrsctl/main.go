package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rrs-edge/internal/config"
	"rrs-edge/internal/origin"
	"rrs-edge/internal/rewrite"
	"rrs-edge/internal/variant"
)

type flags struct {
	config  string
	profile string
}

func (f *flags) load() (config.File, rewrite.Config, error) {
	file, err := config.Load(f.config)
	if err != nil {
		return file, rewrite.Config{}, err
	}
	cfg, err := file.Profile(f.profile)
	return file, cfg, err
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "rrsctl [command] [flags]",
		Short:         "Inspect how image requests map onto resized variants",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "YAML file with rewrite profiles")
	root.PersistentFlags().StringVar(&f.profile, "profile", "responsive", "rewrite profile to use")

	root.AddCommand(newRewriteCmd(f), newPlanCmd(f), newProfilesCmd(f), newPutCmd())
	return root
}

func newRewriteCmd(f *flags) *cobra.Command {
	var width string
	cmd := &cobra.Command{
		Use:   "rewrite <uri>",
		Short: "Print the URI a request is rewritten to",
		Long: `Print the URI a request is rewritten to. The width is taken from --width,
or from the "width" query parameter when the URI carries a query string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := f.load()
			if err != nil {
				return err
			}
			uri := args[0]
			query := map[string]*rewrite.Param{}
			if path, rawQuery, ok := strings.Cut(uri, "?"); ok {
				uri = path
				values, err := url.ParseQuery(rawQuery)
				if err != nil {
					return err
				}
				for name := range values {
					query[name] = &rewrite.Param{Value: values.Get(name)}
				}
			}
			if cmd.Flags().Changed("width") {
				query["width"] = &rewrite.Param{Value: width}
			}
			req := rewrite.New(cfg).Rewrite(&rewrite.Request{URI: uri, Querystring: query})
			fmt.Fprintln(cmd.OutOrStdout(), req.URI)
			return nil
		},
	}
	cmd.Flags().StringVarP(&width, "width", "w", "", "value of the width query parameter")
	return cmd
}

func newPlanCmd(f *flags) *cobra.Command {
	var contentType string
	var srcWidth int
	cmd := &cobra.Command{
		Use:   "plan <key>",
		Short: "List the variant keys the resize pipeline must produce for an original",
		Long: `List the variant keys the resize pipeline must produce for an original.
With --src-width each key is followed by the width it is rendered at; originals
narrower than a variant are not upscaled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := f.load()
			if err != nil {
				return err
			}
			keys, err := variant.Plan(args[0], contentType, cfg.Sizes, cfg.Extension)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for i, k := range keys {
				if srcWidth > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", k, variant.TargetWidth(srcWidth, cfg.Sizes[i], true))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&contentType, "content-type", "t", "image/jpeg", "content type of the original")
	cmd.Flags().IntVar(&srcWidth, "src-width", 0, "width of the original in pixels")
	return cmd
}

func newPutCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "put <key> <file>",
		Short: "Store a file in a local origin directory under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer src.Close()
			return origin.Store{Dir: dir}.Put(args[0], src)
		},
	}
	cmd.Flags().StringVar(&dir, "origin", "origin", "origin directory served by the edge server")
	return cmd
}

func newProfilesCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available rewrite profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.Load(f.config)
			if err != nil {
				return err
			}
			for _, name := range file.Names() {
				cfg, err := file.Profile(name)
				if err != nil {
					return err
				}
				sizes := make([]string, len(cfg.Sizes))
				for i, s := range cfg.Sizes {
					sizes[i] = strconv.Itoa(s)
				}
				ext := cfg.Extension
				if ext == "" {
					ext = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, strings.Join(sizes, ","), ext)
			}
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rrsctl:", err)
		os.Exit(1)
	}
}
