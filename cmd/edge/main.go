package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/core/tenant"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/gateway"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var sErr *ServerError
		if errors.As(err, &sErr) {
			return sErr.ExitCode
		}
		return ExitConfigError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "edge",
		Short: "Tenant-aware edge for the housing cooperative platform",
		Long: `edge resolves the tenant of every request from its host name, validates
it against the platform backend and forwards it to the web front-end with
tenant identity headers.

Example usage:
  edge serve --config edge.yaml
  edge resolve acme.platform.com --path /dashboard
  edge resolve custom-coop.org -o yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newResolveCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

// =============================================================================
// serve
// =============================================================================

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the edge server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return &ServerError{Op: "LoadConfig", Err: err, ExitCode: ExitConfigError}
			}

			logger := SetupLogger(cfg)
			logger.Info("starting edge",
				"version", Version,
				"config", *configPath,
			)

			server, err := NewServer(cfg, logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
}

// =============================================================================
// resolve
// =============================================================================

// resolveOutput is what `edge resolve` prints.
type resolveOutput struct {
	Resolution tenant.Resolution `json:"resolution" yaml:"resolution"`
	Decision   string            `json:"decision" yaml:"decision"`
	Reason     string            `json:"reason" yaml:"reason"`
	Target     string            `json:"target,omitempty" yaml:"target,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

func newResolveCmd(configPath *string) *cobra.Command {
	var (
		urlPath string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "resolve <host>",
		Short: "Resolve a host offline and show the routing decision",
		Long: `resolve runs the resolver and the path guards for a host without calling
the validation backend. Tenants are assumed to exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidatePlatform(); err != nil {
				return err
			}

			probe := &http.Request{
				Method: http.MethodGet,
				Host:   args[0],
				URL:    &url.URL{Path: urlPath},
				Header: http.Header{},
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			router := gateway.NewRouter(cfg.Resolver(), cfg.Policy(), nil, logger)
			d, _ := router.Decide(probe)

			out := resolveOutput{
				Resolution: cfg.Resolver().Resolve(args[0]),
				Decision:   d.Kind.String(),
				Reason:     d.Reason,
				Target:     d.Target,
				Headers:    d.Headers,
			}
			return writeResolveOutput(cmd.OutOrStdout(), output, out)
		},
	}

	cmd.Flags().StringVar(&urlPath, "path", "/", "request path")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeResolveOutput(w io.Writer, format string, out resolveOutput) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "host:           %s\n", out.Resolution.Host)
		fmt.Fprintf(w, "class:          %s\n", out.Resolution.Class)
		fmt.Fprintf(w, "slug:           %s\n", out.Resolution.Slug)
		fmt.Fprintf(w, "custom domain:  %t\n", out.Resolution.CustomDomain)
		fmt.Fprintf(w, "decision:       %s (%s)\n", out.Decision, out.Reason)
		if out.Target != "" {
			fmt.Fprintf(w, "target:         %s\n", out.Target)
		}
		names := make([]string, 0, len(out.Headers))
		for name := range out.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "header:         %s: %s\n", name, out.Headers[name])
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// =============================================================================
// version
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "edge %s (built %s)\n", Version, BuildTime)
		},
	}
}
