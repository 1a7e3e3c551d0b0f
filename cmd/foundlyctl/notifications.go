package main

import (
	"github.com/spf13/cobra"
)

func init() {
	notifCmd := &cobra.Command{Use: "notifications", Short: "Notification operations"}

	var unreadOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{}
			if unreadOnly {
				query["unread"] = "true"
			}
			data, err := doGet("/api/notifications", query)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	notifCmd.AddCommand(listCmd)

	countCmd := &cobra.Command{
		Use:   "unread-count",
		Short: "Show the unread notification count",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/notifications/unread-count", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	notifCmd.AddCommand(countCmd)

	readCmd := &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON("/api/notifications/"+args[0]+"/read", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	notifCmd.AddCommand(readCmd)

	readAllCmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark all notifications as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON("/api/notifications/read-all", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	notifCmd.AddCommand(readAllCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NOTIFICATION_ID",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete("/api/notifications/" + args[0])
		},
	}
	notifCmd.AddCommand(deleteCmd)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all of your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete("/api/notifications")
		},
	}
	notifCmd.AddCommand(clearCmd)

	rootCmd.AddCommand(notifCmd)
}
