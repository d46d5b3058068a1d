package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

func newGroupCmd() *cobra.Command {
	group := &cobra.Command{
		Use:   "group",
		Short: "Friend-group invite helpers",
	}
	group.AddCommand(&cobra.Command{
		Use:   "qr [invite_code]",
		Short: "Render a terminal QR code for a friend-group invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(strings.TrimSpace(args[0]))
			if code == "" {
				return fmt.Errorf("invite code is required")
			}
			accent.Printf("\nInvite code: %s\n\n", code)
			qrterminal.GenerateHalfBlock(code, qrterminal.L, os.Stdout)
			fmt.Println()
			return nil
		},
	})
	return group
}
