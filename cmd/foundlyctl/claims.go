package main

import (
	"github.com/spf13/cobra"
)

func init() {
	matchesCmd := &cobra.Command{
		Use:   "matches",
		Short: "List matches involving your items",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/me/matches", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	rootCmd.AddCommand(matchesCmd)

	claimsCmd := &cobra.Command{Use: "claims", Short: "Claim operations"}

	publicCmd := &cobra.Command{
		Use:   "public FOUND_ITEM_ID",
		Short: "Claim a publicly listed found item as yours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON("/api/claims/public", map[string]string{"foundItemId": args[0]})
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	claimsCmd.AddCommand(publicCmd)

	var answer1, answer2 string
	verifyCmd := &cobra.Command{
		Use:   "verify MATCH_ID",
		Short: "Answer a match's verification quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"answer1": answer1, "answer2": answer2}
			data, err := doPostJSON("/api/matches/"+args[0]+"/verify", payload)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&answer1, "answer1", "", "Answer to the first question (required)")
	verifyCmd.Flags().StringVar(&answer2, "answer2", "", "Answer to the second question (required)")
	_ = verifyCmd.MarkFlagRequired("answer1")
	_ = verifyCmd.MarkFlagRequired("answer2")
	claimsCmd.AddCommand(verifyCmd)

	mineCmd := &cobra.Command{
		Use:   "mine",
		Short: "List claims you made",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/me/claims", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	claimsCmd.AddCommand(mineCmd)

	receivedCmd := &cobra.Command{
		Use:   "received",
		Short: "List approved claims on items you found",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/me/claims/received", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	claimsCmd.AddCommand(receivedCmd)

	getCmd := &cobra.Command{
		Use:   "get CLAIM_ID",
		Short: "Show a claim you are party to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/claims/"+args[0], nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	claimsCmd.AddCommand(getCmd)

	rootCmd.AddCommand(claimsCmd)
}
