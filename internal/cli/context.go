package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newContextCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the saved viewer and last opened offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := rt.contextStore().Load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.String())
			return nil
		},
	}
	cmd.AddCommand(newContextSetCmd(rt), newContextClearCmd(rt))
	return cmd
}

func newContextSetCmd(rt *runtime) *cobra.Command {
	var viewerID, viewerName, offerID string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the viewer or offer used by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("viewer-id") && !flags.Changed("viewer-name") && !flags.Changed("offer") {
				return fmt.Errorf("nothing to set: pass --viewer-id, --viewer-name or --offer")
			}

			store := rt.contextStore()
			saved, err := store.Load()
			if err != nil {
				return err
			}
			if flags.Changed("viewer-id") || flags.Changed("viewer-name") {
				id := saved.ViewerID
				if flags.Changed("viewer-id") {
					id = viewerID
				}
				name := saved.ViewerName
				if flags.Changed("viewer-name") {
					name = viewerName
				}
				if strings.TrimSpace(id) == "" {
					return fmt.Errorf("viewer id required")
				}
				saved.SetViewer(id, name)
			}
			if flags.Changed("offer") {
				saved.SetLastOffer(offerID)
			}
			if err := store.Save(saved); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&viewerID, "viewer-id", "", "participant id of the local user")
	cmd.Flags().StringVar(&viewerName, "viewer-name", "", "display name of the local user")
	cmd.Flags().StringVar(&offerID, "offer", "", "offer conversation opened by default")
	return cmd
}

func newContextClearCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.contextStore().Clear()
		},
	}
}
