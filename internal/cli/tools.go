package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"homefix/internal/config"
	"homefix/internal/mcpclient"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed by a running server",
	RunE:  runTools,
}

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call a tool on a running server",
	Example: `  homefix call generate_bom --args '{"issue_type":"leaky faucet"}'
  echo '{"zip":"94110","scope":"panel swap","confirmed":true}' | homefix call request_quotes --args -`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

var (
	serverURL string
	callArgs  string
)

func init() {
	for _, c := range []*cobra.Command{toolsCmd, callCmd} {
		c.Flags().StringVar(&serverURL, "url", "", "MCP endpoint (default: http://<server.listen><server.mcp_path>)")
	}
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "tool arguments as a JSON object, or - to read stdin")
}

func connect(ctx context.Context) (*mcpclient.Client, error) {
	cfg, err := loadConfig(true, nil)
	if err != nil {
		return nil, withExitCode(ExitConfigInvalid, err)
	}
	client := mcpclient.New(endpointFor(cfg, serverURL), cfg.Server.AuthToken)
	if err := client.Initialize(ctx); err != nil {
		return nil, explain(err)
	}
	return client, nil
}

func endpointFor(cfg config.Config, override string) string {
	if u := strings.TrimSpace(override); u != "" {
		return u
	}
	return "http://" + cfg.Server.Listen + cfg.Server.MCPPath
}

// explain appends the actionable hint for a canonical error code, if any.
func explain(err error) error {
	if hint := mcpclient.ActionableMessage(mcpclient.CanonicalCode(err)); hint != "" {
		return fmt.Errorf("%w\n  %s", err, hint)
	}
	return err
}

func runTools(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	tools, err := client.ListTools(ctx)
	if err != nil {
		return explain(err)
	}
	if globalFlags.JSON {
		emitJSON(map[string]interface{}{"tools": tools})
		return nil
	}
	st := newStyles(os.Stdout, false)
	fmt.Println(st.sectionHeader(fmt.Sprintf("Tools (%d)", len(tools))))
	for _, tool := range tools {
		fmt.Println(st.kv(tool.Name, firstLine(tool.Description)))
	}
	return nil
}

func runCall(cmd *cobra.Command, args []string) error {
	toolArgs, err := parseCallArgs(callArgs, os.Stdin)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	res, err := client.CallTool(ctx, args[0], toolArgs)
	if err != nil {
		return explain(err)
	}

	if globalFlags.JSON {
		emitJSON(res)
	} else {
		st := newStyles(os.Stdout, false)
		if res.IsError {
			fmt.Println(st.errPrefix(), res.Text())
			if hint := mcpclient.ActionableMessage(res.ErrorCode()); hint != "" {
				fmt.Println("  " + hint)
			}
		} else {
			fmt.Println(res.Text())
			if !globalFlags.Quiet {
				fmt.Println()
				writeJSON(os.Stdout, res.StructuredContent)
				fmt.Println(st.dim(fmt.Sprintf("(%s)", res.Elapsed.Round(time.Millisecond))))
			}
		}
	}
	if res.IsError {
		return withExitCode(ExitGenericError, errors.New("tool call failed: "+res.ErrorCode()))
	}
	return nil
}

// parseCallArgs decodes --args. "-" reads the object from stdin.
func parseCallArgs(raw string, stdin io.Reader) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read --args from stdin: %w", err)
		}
		raw = strings.TrimSpace(string(b))
	}
	if raw == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("--args must be a JSON object: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func closeClient(c *mcpclient.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.Close(ctx)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
