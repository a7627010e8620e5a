package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/shandley/stenograph/mcpserver"
)

func newMCPCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve steno_parse and steno_map as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			parser, err := opts.buildParser(logger)
			if err != nil {
				return err
			}
			mapper, _, err := opts.buildMapper(logger)
			if err != nil {
				return err
			}
			return server.ServeStdio(mcpserver.New(parser, mapper, version))
		},
	}
}
