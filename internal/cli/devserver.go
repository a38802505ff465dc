package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/offerchat/internal/devserver"
	"github.com/tOgg1/offerchat/internal/logging"
)

type devServerOptions struct {
	addr  string
	db    string
	users []string
}

func newDevServerCmd(rt *runtime) *cobra.Command {
	opts := &devServerOptions{}
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run a local messages backend",
		Long: `Serve GET and POST /messages from a local SQLite database.

Each --user id=name gets a session token, printed on startup. Point the client at it with
OFFERCHAT_API_SESSION_TOKEN=<token>. Endpoints are mounted under the path of api.base_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rt.runDevServer(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: dev_server.addr)")
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite database path, or :memory:")
	cmd.Flags().StringArrayVar(&opts.users, "user", nil, "participant as id=name (repeatable)")

	return cmd
}

func (rt *runtime) runDevServer(ctx context.Context, out io.Writer, opts *devServerOptions) error {
	cfg, err := rt.config()
	if err != nil {
		return err
	}
	participants, err := parseParticipants(opts.users)
	if err != nil {
		return err
	}

	addr := strings.TrimSpace(opts.addr)
	if addr == "" {
		addr = cfg.DevServer.Addr
	}
	dbPath := strings.TrimSpace(opts.db)
	if dbPath == "" {
		dbPath = cfg.DevServerDBPath()
	}

	store, err := devserver.OpenStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, p := range participants {
		token, err := store.CreateSession(ctx, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "session %s (%s): %s\n", p.ID, p.Name, token)
	}

	log := logging.FromContext(ctx)
	log.Info().Str("db", dbPath).Int("sessions", len(participants)).Msg("starting dev server")
	server := devserver.NewServer(devserver.Config{
		Addr:             addr,
		PathPrefix:       pathPrefix(cfg.API.BaseURL),
		SessionCookie:    cfg.API.SessionCookie,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
	}, store)
	return server.ListenAndServe(ctx)
}

func parseParticipants(values []string) ([]devserver.Participant, error) {
	out := make([]devserver.Participant, 0, len(values))
	for _, value := range values {
		id, name, _ := strings.Cut(value, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("invalid --user %q: expected id=name", value)
		}
		out = append(out, devserver.Participant{ID: id, Name: strings.TrimSpace(name)})
	}
	return out, nil
}

// pathPrefix returns the path component of the API base URL, so the dev
// server answers where the client will ask.
func pathPrefix(baseURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return ""
	}
	return strings.TrimRight(parsed.Path, "/")
}
