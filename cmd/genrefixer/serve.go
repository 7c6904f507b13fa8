package main

import (
	"github.com/spf13/cobra"

	"github.com/justestif/genrefixer/internal/web"
)

// serveConcurrency bounds upstream queries per request.
const serveConcurrency = 4

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			res, err := a.newResolver(cmd.Context(), serveConcurrency)
			if err != nil {
				return err
			}

			addr := a.cfg.ListenAddr
			if v, _ := cmd.Flags().GetString("addr"); v != "" {
				addr = v
			}

			server := web.NewServer(web.ServerConfig{Addr: addr}, res, a.index, a.log.Named("web"))
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "Listen address; overrides GENREFIXER_ADDR")
	return cmd
}
