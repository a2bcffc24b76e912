package cli

import (
	"github.com/claude/fitlog/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd(e *env) *cobra.Command {
	var remote, apiKey string

	c := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long: "Serve the MCP tools over stdio. With --remote the tools call a fitlog server's REST API " +
			"instead of opening the configured store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ds mcp.DataSource
			if remote != "" {
				ds = mcp.NewHTTPClient(remote, apiKey)
			} else {
				lib, err := e.library(cmd.Context())
				if err != nil {
					return err
				}
				ds = lib
			}
			e.log.Info("mcp stdio server starting", "remote", remote)
			return server.ServeStdio(mcp.New(ds, e.version, e.log))
		},
	}

	c.Flags().StringVar(&remote, "remote", "", "base URL of a fitlog server (e.g. http://fitlog.tailnet.ts.net)")
	c.Flags().StringVar(&apiKey, "api-key", "", "API key for --remote")
	return c
}
