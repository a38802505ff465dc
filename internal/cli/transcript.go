package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/offerchat/internal/chat"
)

type transcriptOptions struct {
	viewerID string
	title    string
	out      string
}

func newTranscriptCmd(rt *runtime) *cobra.Command {
	opts := &transcriptOptions{}
	cmd := &cobra.Command{
		Use:   "transcript <offer-id>",
		Short: "Write a conversation as an HTML fragment",
		Long:  "Fetch the conversation once and write it as escaped HTML, with the viewer's own messages marked.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTranscript(cmd.Context(), cmd, strings.TrimSpace(args[0]), opts, nil)
		},
	}

	cmd.Flags().StringVar(&opts.viewerID, "viewer-id", "", "participant id whose messages are marked as own")
	cmd.Flags().StringVar(&opts.title, "title", "", "transcript title (default: Offer <id>)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")

	return cmd
}

// runTranscript fetches through transport, or through an HTTP client built
// from the config when transport is nil.
func (rt *runtime) runTranscript(ctx context.Context, cmd *cobra.Command, offerID string, opts *transcriptOptions, transport chat.Transport) error {
	cfg, err := rt.config()
	if err != nil {
		return err
	}
	if offerID == "" {
		return fmt.Errorf("offer id required")
	}

	chatCfg := cfg.ChatConfig().Normalize()
	if transport == nil {
		client, err := chat.NewClient(chatCfg)
		if err != nil {
			return err
		}
		transport = client
	}

	viewerID := strings.TrimSpace(opts.viewerID)
	if viewerID == "" {
		if saved, err := rt.contextStore().Load(); err == nil {
			viewerID = saved.ViewerID
		}
	}
	title := strings.TrimSpace(opts.title)
	if title == "" {
		title = "Offer " + offerID
	}

	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithTimeout(ctx, chatCfg.RequestTimeout)
	defer cancel()
	msgs, err := transport.FetchMessages(fetchCtx, offerID)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}

	view := chat.Project(msgs, chat.Viewer{ID: viewerID}, title, time.Now())

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer file.Close()
		w = file
	}
	return chat.WriteHTML(w, chatCfg.ContainerID, view)
}
