package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"homefix/internal/config"
	"homefix/internal/mcp"
	"homefix/internal/quotes"
	"homefix/internal/vision"
	"homefix/internal/widgets"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the MCP server",
	RunE:  runUp,
}

var (
	upListen  string
	upMCPPath string
	upPublic  bool
)

func init() {
	upCmd.Flags().StringVar(&upListen, "listen", "", "host:port to listen on (default "+config.DefaultListen+")")
	upCmd.Flags().StringVar(&upMCPPath, "mcp-path", "", "HTTP path for the MCP endpoint (default "+config.DefaultMCPPath+")")
	upCmd.Flags().BoolVar(&upPublic, "public", false, "enable per-IP rate limiting for internet-facing deployments")
}

func runUp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false, func(o *config.Overrides) {
		if cmd.Flags().Changed("listen") {
			o.Listen = &upListen
		}
		if cmd.Flags().Changed("mcp-path") {
			o.MCPPath = &upMCPPath
		}
		if cmd.Flags().Changed("public") {
			o.Public = &upPublic
		}
	})
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visionModel, err := vision.New(ctx, cfg)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	outcomes, err := openOutcomeStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outcomes.Close(); cerr != nil {
			logger.Warn("close outcome store", "error", cerr)
		}
	}()

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return withExitCode(ExitBindFailure, fmt.Errorf("server bind failure: %w", err))
	}

	server := mcp.NewServer(mcp.Options{
		Config:      cfg,
		Vision:      visionModel,
		Contractors: quotes.MockMatcher{},
		Outcomes:    outcomes,
		Widgets:     widgets.NewRegistry(cfg.Widgets.DistDir),
		Logger:      logger,
		Version:     version,
	})

	mcpURL := "http://" + listener.Addr().String() + cfg.Server.MCPPath
	if globalFlags.JSON {
		emitJSON(map[string]interface{}{
			"event":     "server_started",
			"url":       mcpURL,
			"transport": "mcp_streamable_http",
			"model":     vision.Name(cfg),
			"outcomes":  cfg.Outcomes.Backend,
		})
	} else if !globalFlags.Quiet {
		st := newStyles(os.Stdout, false)
		fmt.Println(st.banner(), st.dim(version))
		fmt.Println()
		fmt.Println(st.sectionHeader("MCP endpoint"))
		fmt.Println(st.kv("URL", st.URL.Render(mcpURL)))
		fmt.Println(st.kv("Model", vision.Name(cfg)))
		fmt.Println(st.kv("Outcomes", cfg.Outcomes.Backend))
		if cfg.Server.AuthToken != "" {
			fmt.Println(st.kv("Auth", "Bearer (HOMEFIX_AUTH_TOKEN)"))
		} else {
			fmt.Println(st.kv("Auth", "none"))
		}
		if cfg.Server.Public {
			fmt.Println(st.kv("Rate limit", fmt.Sprintf("%.3g rps, burst %d per IP", cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)))
		}
		fmt.Println(st.kv("Health", "http://"+listener.Addr().String()+"/health"))
		fmt.Println()
	}

	if err := server.Serve(ctx, listener); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
