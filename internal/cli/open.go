package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/offerchat/internal/chat"
	"github.com/tOgg1/offerchat/internal/chattui"
	"github.com/tOgg1/offerchat/internal/config"
	"github.com/tOgg1/offerchat/internal/logging"
)

type openOptions struct {
	viewerID   string
	viewerName string
	title      string
	lineMode   bool
}

// sessionRunner runs one terminal chat session.
type sessionRunner func(ctx context.Context, opts chattui.Options) error

func newOpenCmd(rt *runtime) *cobra.Command {
	opts := &openOptions{}
	cmd := &cobra.Command{
		Use:   "open [offer-id]",
		Short: "Open an offer conversation",
		Long: `Open the conversation attached to an offer and keep it refreshed until you leave.

On a terminal this starts a full-screen view; otherwise each message is printed
once and every input line is sent. The viewer and offer default to the saved context.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interactive := hasTTY() && !opts.lineMode
			runner := sessionRunner(chattui.RunLines)
			if interactive {
				runner = chattui.Run
			}
			return rt.runOpen(ctx, cmd, args, opts, interactive, runner)
		},
	}

	cmd.Flags().StringVar(&opts.viewerID, "viewer-id", "", "participant id of the local user")
	cmd.Flags().StringVar(&opts.viewerName, "viewer-name", "", "display name of the local user")
	cmd.Flags().StringVar(&opts.title, "title", "", "conversation title (default: Offer <id>)")
	cmd.Flags().BoolVar(&opts.lineMode, "lines", false, "use line mode even on a terminal")

	return cmd
}

func (rt *runtime) runOpen(ctx context.Context, cmd *cobra.Command, args []string, opts *openOptions, interactive bool, runner sessionRunner) error {
	cfg, err := rt.config()
	if err != nil {
		return err
	}

	store := rt.contextStore()
	saved, err := store.Load()
	if err != nil {
		return err
	}

	offerID := saved.LastOfferID
	if len(args) > 0 {
		offerID = strings.TrimSpace(args[0])
	}
	if offerID == "" {
		return fmt.Errorf("offer id required (no conversation in saved context)")
	}

	viewer := resolveViewer(saved, opts)
	if viewer.ID == "" {
		return fmt.Errorf("viewer id required: pass --viewer-id or run `offerchat context set --viewer-id`")
	}

	title := strings.TrimSpace(opts.title)
	if title == "" {
		title = "Offer " + offerID
	}

	chatCfg := cfg.ChatConfig()
	client, err := chat.NewClient(chatCfg)
	if err != nil {
		return err
	}

	saved.SetViewer(viewer.ID, viewer.Name)
	saved.SetLastOffer(offerID)
	if err := store.Save(saved); err != nil {
		log := logging.FromContext(ctx)
		log.Warn().Err(err).Str("path", store.Path()).Msg("could not save context")
	}

	if interactive && strings.TrimSpace(cfg.Logging.File) == "" {
		// Console logs would tear the alternate screen.
		logging.Discard()
	}

	return runner(ctx, chattui.Options{
		Config:         chatCfg,
		Transport:      client,
		ConversationID: offerID,
		Viewer:         viewer,
		Title:          title,
		Theme:          cfg.TUI.Theme,
		Input:          inputFor(cmd, interactive),
		Output:         outputFor(cmd, interactive),
	})
}

func resolveViewer(saved *config.Context, opts *openOptions) chat.Viewer {
	viewer := chat.Viewer{
		ID:   strings.TrimSpace(opts.viewerID),
		Name: strings.TrimSpace(opts.viewerName),
	}
	if viewer.ID == "" && saved != nil {
		viewer.ID = saved.ViewerID
		if viewer.Name == "" {
			viewer.Name = saved.ViewerName
		}
	}
	return viewer
}

// inputFor leaves the full-screen program on the real terminal.
func inputFor(cmd *cobra.Command, interactive bool) io.Reader {
	if interactive {
		return nil
	}
	return cmd.InOrStdin()
}

func outputFor(cmd *cobra.Command, interactive bool) io.Writer {
	if interactive {
		return nil
	}
	return cmd.OutOrStdout()
}
